package models

// RawRecord holds one spreadsheet row exactly as read, before any parsing.
type RawRecord struct {
	Sheet string
	Line  int

	Period       string
	Status       string
	Neighborhood string
	Units        string
	PricedValue  string // value × quantity
	Area         string // m² × quantity
	Rooms        string
	Stage        string
	Project      string
	Company      string
	UnitPrice    string // optional
	UnitArea     string // optional
}

// NotAvailable labels a derived category that could not be computed.
const NotAvailable = "N/A"

// RoomBucket is a room count ("0".."3"), the "4+" sentinel, or RoomsUnknown.
type RoomBucket string

const (
	RoomsUnknown RoomBucket = ""
	RoomsFourUp  RoomBucket = "4+"
)

// MarketRecord is a normalized row. Records are never mutated after
// normalization; every aggregate is recomputed from them.
type MarketRecord struct {
	Period  int // YYYYMM, 0 when missing or invalid
	Year    int
	Month   int
	Quarter string // "1T".."4T" or NotAvailable

	Status    Status
	RawStatus string

	Neighborhood string
	Units        float64
	PricedValue  float64
	Area         float64
	Rooms        RoomBucket
	Stage        string

	Project         string
	ProjectIdentity string
	Company         string

	ValueBracket string
	AreaBracket  string

	// Valid is false for malformed rows: missing/invalid period, unknown
	// status, or missing/negative unit count. Invalid rows never reach an
	// aggregate.
	Valid bool
}

// Key returns the uniqueness triple of the record's project.
func (r *MarketRecord) Key() ProjectKey {
	return ProjectKey{Identity: r.ProjectIdentity, Company: r.Company, Neighborhood: r.Neighborhood}
}

// ProjectKey identifies one development: two records with the same key
// belong to the same project.
type ProjectKey struct {
	Identity     string
	Company      string
	Neighborhood string
}

func (k ProjectKey) String() string {
	return k.Identity + " (" + k.Company + ", " + k.Neighborhood + ")"
}
