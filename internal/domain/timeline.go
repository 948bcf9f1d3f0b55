package domain

// YearlyFundMetrics is one realization's fund position at the end of one year.
type YearlyFundMetrics struct {
	Year                    int     `json:"year"`
	CapitalCalled           float64 `json:"capitalCalled"`
	CumulativeDistributions float64 `json:"cumulativeDistributions"` // net of cumulative fees
	UnrealizedValue         float64 `json:"unrealizedValue"`
	ManagementFees          float64 `json:"managementFees"` // cumulative
	DPI                     float64 `json:"dpi"`
	RVPI                    float64 `json:"rvpi"`
	TVPI                    float64 `json:"tvpi"`
}

// YearlyMetricsBand is the P10/P50/P90 spread of DPI, RVPI and TVPI for one year.
type YearlyMetricsBand struct {
	Year int `json:"year"`

	DPIP10 float64 `json:"dpiP10"`
	DPIP50 float64 `json:"dpiP50"`
	DPIP90 float64 `json:"dpiP90"`

	RVPIP10 float64 `json:"rvpiP10"`
	RVPIP50 float64 `json:"rvpiP50"`
	RVPIP90 float64 `json:"rvpiP90"`

	TVPIP10 float64 `json:"tvpiP10"`
	TVPIP50 float64 `json:"tvpiP50"`
	TVPIP90 float64 `json:"tvpiP90"`
}
