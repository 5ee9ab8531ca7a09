package models

// InsightReport summarizes a dashboard for the terminal.
type InsightReport struct {
	TotalRows     int
	MalformedRows int
	FirstPeriod   int
	LastPeriod    int

	LatestYear       string
	LatestMonthIVV   float64
	LatestYearIVV    float64
	OfferUnits       float64 // latest month
	SalesUnits       float64 // latest year
	LaunchUnits      float64 // latest year
	LaunchedProjects int     // latest year
	VGV              float64 // latest year
	SalePricePerM2   float64 // latest year

	TopNeighborhoods []NeighborhoodSales
}

// NeighborhoodSales is one entry of the top-neighborhoods ranking.
type NeighborhoodSales struct {
	Name  string
	Units float64
	IVV   float64
}
