package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/fees"
)

// feeTermsRequest holds the fund terms shared by fee endpoints.
// A nil FeeStructure uses the default 2/20 terms.
type feeTermsRequest struct {
	FundSize         float64              `json:"fundSize"`
	FeeStructure     *domain.FeeStructure `json:"feeStructure"`
	InvestmentPeriod int                  `json:"investmentPeriod"`
	FundLife         int                  `json:"fundLife"`
}

func (r feeTermsRequest) validate() (domain.FeeStructure, error) {
	fs := domain.DefaultFeeStructure()
	if r.FeeStructure != nil {
		fs = *r.FeeStructure
	}
	if r.FundSize <= 0 {
		return fs, fmt.Errorf("%w: fund size must be positive", domain.ErrInvalidInput)
	}
	if r.InvestmentPeriod < 1 || r.FundLife < 1 {
		return fs, fmt.Errorf("%w: investment period and fund life must be >= 1 year", domain.ErrInvalidInput)
	}
	return fs, fs.Validate()
}

type netReturnsRequest struct {
	feeTermsRequest
	GrossProceeds float64 `json:"grossProceeds"`
	TotalInvested float64 `json:"totalInvested"`
}

func (s *Server) handleNetReturns(c *gin.Context) {
	var req netReturnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	fs, err := req.validate()
	if err != nil {
		s.respondError(c, err)
		return
	}
	if req.GrossProceeds < 0 || req.TotalInvested < 0 {
		s.respondError(c, fmt.Errorf("%w: proceeds and invested capital must be >= 0", domain.ErrInvalidInput))
		return
	}

	c.JSON(http.StatusOK, fees.CalculateNetReturns(
		req.GrossProceeds, req.FundSize, req.TotalInvested, fs, req.InvestmentPeriod, req.FundLife))
}

func (s *Server) handleDragTable(c *gin.Context) {
	var req feeTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	fs, err := req.validate()
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deployment": fees.DragTableDeployment,
		"rows":       fees.GenerateFeeDragTable(req.FundSize, fs, req.InvestmentPeriod, req.FundLife),
	})
}
