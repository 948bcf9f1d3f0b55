package domain

// Outcome thresholds on a company's return multiple.
const (
	WriteOffMultiple = 0.1
	OutlierMultiple  = 20.0
)

// CompanyResult is one simulated company within one fund realization.
type CompanyResult struct {
	Stage           Stage   `json:"stage"`
	InvestedCapital float64 `json:"investedCapital"`
	ReturnedCapital float64 `json:"returnedCapital"`
	ReturnMultiple  float64 `json:"returnMultiple"`
	ExitYear        float64 `json:"exitYear"` // years from fund start, fractional
	BucketLabel     string  `json:"bucketLabel"`
}

// SimulationResult is one fund realization.
type SimulationResult struct {
	Companies                  []CompanyResult `json:"companies"`
	TotalInvestedCapital       float64         `json:"totalInvestedCapital"`
	TotalReturnedCapital       float64         `json:"totalReturnedCapital"`
	GrossMOIC                  float64         `json:"grossMOIC"`
	MultipleOnCommittedCapital float64         `json:"multipleOnCommittedCapital"`
	GrossIRR                   float64         `json:"grossIRR"`
	IRRConverged               bool            `json:"irrConverged"`
	NumWriteOffs               int             `json:"numWriteOffs"`
	NumOutliers                int             `json:"numOutliers"`
	NumSeedCompanies           int             `json:"numSeedCompanies"`
	NumSeriesACompanies        int             `json:"numSeriesACompanies"`
}

// NetReturnsResult is the outcome of one fee waterfall evaluation.
type NetReturnsResult struct {
	GrossProceeds   float64 `json:"grossProceeds"`
	ManagementFees  float64 `json:"managementFees"`
	CarriedInterest float64 `json:"carriedInterest"`
	NetToLP         float64 `json:"netToLP"`
	NetMOIC         float64 `json:"netMOIC"`
	GrossMOIC       float64 `json:"grossMOIC"`
	FeeDragPercent  float64 `json:"feeDragPercent"`
	GPTotalComp     float64 `json:"gpTotalComp"`
	Distributable   float64 `json:"distributable"`
}

// NetOverlay pairs a realization's gross multiple with its fee waterfall.
// It is derived from a SimulationResult and never written back into it.
type NetOverlay struct {
	GrossMOIC float64          `json:"grossMOIC"`
	Net       NetReturnsResult `json:"net"`
}

// NetSummary aggregates net-of-fee outcomes across realizations.
type NetSummary struct {
	MedianNetMOIC      float64 `json:"medianNetMOIC"`
	NetMOICP10         float64 `json:"netMOICP10"`
	NetMOICP90         float64 `json:"netMOICP90"`
	MeanNetMOIC        float64 `json:"meanNetMOIC"`
	AvgFeeDragPercent  float64 `json:"avgFeeDragPercent"`
	AvgManagementFees  float64 `json:"avgManagementFees"`
	AvgCarriedInterest float64 `json:"avgCarriedInterest"`
	ProbNetMOICAbove2x float64 `json:"probNetMOICAbove2x"`
}

// SummaryStatistics aggregates many realizations.
type SummaryStatistics struct {
	NumSimulations int `json:"numSimulations"`

	// MOIC distribution
	MedianMOIC float64 `json:"medianMOIC"`
	MOICP10    float64 `json:"moicP10"`
	MOICP90    float64 `json:"moicP90"`
	MeanMOIC   float64 `json:"meanMOIC"`
	StdDevMOIC float64 `json:"stdDevMOIC"`

	// IRR distribution
	MedianIRR float64 `json:"medianIRR"`
	IRRP10    float64 `json:"irrP10"`
	IRRP90    float64 `json:"irrP90"`
	MeanIRR   float64 `json:"meanIRR"`
	StdDevIRR float64 `json:"stdDevIRR"`

	// Threshold probabilities (fractions, 0-1)
	ProbMOICAbove2x float64 `json:"probMOICAbove2x"`
	ProbMOICAbove3x float64 `json:"probMOICAbove3x"`
	ProbMOICAbove5x float64 `json:"probMOICAbove5x"`

	AvgWriteOffs float64 `json:"avgWriteOffs"`
	AvgOutliers  float64 `json:"avgOutliers"`

	// IRRNonConverged counts realizations whose IRR is a best-effort estimate.
	IRRNonConverged int `json:"irrNonConverged"`

	Net *NetSummary `json:"net,omitempty"`
}
