// Package fees implements the management fee and carried interest waterfall.
// All money arithmetic runs on shopspring/decimal and converts back to float64 at the edges.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// DragTableDeployment is the share of the fund assumed invested when building the drag table.
const DragTableDeployment = 0.8

// DragTableMultiples are the gross MOIC rows of the drag table.
var DragTableMultiples = []float64{1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0}

var hundred = decimal.NewFromInt(100)

func percent(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Div(hundred)
}

// managementFees = fundSize*rate*IP + fundSize*stepDown*max(0, life-IP).
func managementFees(fundSize decimal.Decimal, fs domain.FeeStructure, investmentPeriod, fundLife int) decimal.Decimal {
	stepDownYears := fundLife - investmentPeriod
	if stepDownYears < 0 {
		stepDownYears = 0
	}

	during := fundSize.Mul(percent(fs.ManagementFeeRate)).Mul(decimal.NewFromInt(int64(investmentPeriod)))
	after := fundSize.Mul(percent(fs.ManagementFeeStepDown)).Mul(decimal.NewFromInt(int64(stepDownYears)))
	return during.Add(after)
}

// CalculateManagementFees returns lifetime management fees.
func CalculateManagementFees(fundSize float64, fs domain.FeeStructure, investmentPeriod, fundLife int) float64 {
	return managementFees(decimal.NewFromFloat(fundSize), fs, investmentPeriod, fundLife).InexactFloat64()
}

// CalculateDeployableCapital returns fund size less lifetime management fees.
func CalculateDeployableCapital(fundSize float64, fs domain.FeeStructure, investmentPeriod, fundLife int) float64 {
	size := decimal.NewFromFloat(fundSize)
	return size.Sub(managementFees(size, fs, investmentPeriod, fundLife)).InexactFloat64()
}

// CalculateNetReturns runs a whole-fund (European) waterfall with a simple hurdle and no GP catch-up.
//
// distributable = max(0, gross - fees). Nothing above fundSize or below the
// hurdle fundSize*(1 + hurdle*life) earns carry. Above the hurdle, carry is
// carryRate of the excess and LPs keep the rest.
func CalculateNetReturns(grossProceeds, fundSize, totalInvested float64, fs domain.FeeStructure, investmentPeriod, fundLife int) domain.NetReturnsResult {
	gross := decimal.NewFromFloat(grossProceeds)
	size := decimal.NewFromFloat(fundSize)
	invested := decimal.NewFromFloat(totalInvested)

	fees := managementFees(size, fs, investmentPeriod, fundLife)

	distributable := gross.Sub(fees)
	if distributable.IsNegative() {
		distributable = decimal.Zero
	}

	carry := decimal.Zero
	netToLP := distributable
	if distributable.GreaterThan(size) {
		years := decimal.NewFromInt(int64(fundLife))
		hurdle := size.Mul(decimal.NewFromInt(1).Add(percent(fs.HurdleRate).Mul(years)))
		if distributable.GreaterThan(hurdle) {
			excess := distributable.Sub(hurdle)
			carry = excess.Mul(percent(fs.CarryRate))
			netToLP = hurdle.Add(excess.Sub(carry))
		}
	}

	grossMOIC := decimal.Zero
	gpCommitReturn := decimal.Zero
	if invested.IsPositive() {
		grossMOIC = gross.Div(invested)
		gpCommitReturn = size.Mul(percent(fs.GPCommitPercent)).Mul(grossMOIC)
	}

	netMOIC := decimal.Zero
	if size.IsPositive() {
		netMOIC = netToLP.Div(size)
	}

	drag := decimal.Zero
	if grossMOIC.IsPositive() {
		drag = grossMOIC.Sub(netMOIC).Div(grossMOIC).Mul(hundred)
	}

	return domain.NetReturnsResult{
		GrossProceeds:   grossProceeds,
		ManagementFees:  fees.InexactFloat64(),
		CarriedInterest: carry.InexactFloat64(),
		NetToLP:         netToLP.InexactFloat64(),
		NetMOIC:         netMOIC.InexactFloat64(),
		GrossMOIC:       grossMOIC.InexactFloat64(),
		FeeDragPercent:  drag.InexactFloat64(),
		GPTotalComp:     fees.Add(carry).Add(gpCommitReturn).InexactFloat64(),
		Distributable:   distributable.InexactFloat64(),
	}
}

// FeeDragRow is one line of the fee drag table.
type FeeDragRow struct {
	GrossMOIC       float64 `json:"grossMOIC"`
	GrossProceeds   float64 `json:"grossProceeds"`
	NetMOIC         float64 `json:"netMOIC"`
	FeeDragPercent  float64 `json:"feeDragPercent"`
	ManagementFees  float64 `json:"managementFees"`
	CarriedInterest float64 `json:"carriedInterest"`
	NetToLP         float64 `json:"netToLP"`
}

// GenerateFeeDragTable shows how fee drag moves with gross performance,
// assuming 80% of the fund is deployed.
func GenerateFeeDragTable(fundSize float64, fs domain.FeeStructure, investmentPeriod, fundLife int) []FeeDragRow {
	invested := decimal.NewFromFloat(fundSize).Mul(decimal.NewFromFloat(DragTableDeployment)).InexactFloat64()

	rows := make([]FeeDragRow, 0, len(DragTableMultiples))
	for _, m := range DragTableMultiples {
		proceeds := decimal.NewFromFloat(invested).Mul(decimal.NewFromFloat(m)).InexactFloat64()
		net := CalculateNetReturns(proceeds, fundSize, invested, fs, investmentPeriod, fundLife)
		rows = append(rows, FeeDragRow{
			GrossMOIC:       m,
			GrossProceeds:   proceeds,
			NetMOIC:         net.NetMOIC,
			FeeDragPercent:  net.FeeDragPercent,
			ManagementFees:  net.ManagementFees,
			CarriedInterest: net.CarriedInterest,
			NetToLP:         net.NetToLP,
		})
	}
	return rows
}
