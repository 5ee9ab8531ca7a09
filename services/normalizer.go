package services

import (
	"market-dashboard/models"
	"market-dashboard/utils"
)

// Normalizer turns RawRecords into MarketRecords.
type Normalizer struct {
	logger   *utils.Logger
	identity *IdentityNormalizer
}

// NewNormalizer creates a Normalizer using DefaultIdentityRules.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger, identity: defaultIdentity}
}

// WithIdentityRules returns a copy of n that canonicalizes project names with
// rules instead of DefaultIdentityRules.
func (n *Normalizer) WithIdentityRules(rules []IdentityRule) *Normalizer {
	return &Normalizer{logger: n.logger, identity: NewIdentityNormalizer(rules)}
}

// Normalize parses and categorizes every raw record. It returns a new slice
// of the same length and never modifies raw. Malformed rows are kept with
// Valid=false so that every aggregate skips them.
func (n *Normalizer) Normalize(raw []*models.RawRecord) []*models.MarketRecord {
	result := make([]*models.MarketRecord, 0, len(raw))
	invalid := 0

	for _, r := range raw {
		rec := n.normalizeOne(r)
		if !rec.Valid {
			invalid++
			n.logger.Debug("[normalizer] Malformed row %s:%d (period=%q status=%q units=%q) omitted from aggregates",
				r.Sheet, r.Line, r.Period, r.Status, r.Units)
		}
		result = append(result, rec)
	}

	n.logger.Info("[normalizer] Normalized %d rows (%d malformed, omitted from aggregates)",
		len(result), invalid)
	return result
}

func (n *Normalizer) normalizeOne(r *models.RawRecord) *models.MarketRecord {
	rec := &models.MarketRecord{
		Quarter:      models.NotAvailable,
		RawStatus:    utils.NormaliseText(r.Status),
		Status:       models.ParseStatus(utils.Fold(r.Status)),
		Neighborhood: utils.Fold(r.Neighborhood),
		Rooms:        parseRooms(r.Rooms),
		Stage:        utils.NormaliseText(r.Stage),
		Project:      utils.NormaliseText(r.Project),
		Company:      utils.Fold(r.Company),
	}
	rec.ProjectIdentity = n.identity.Canonical(r.Project)

	if p, ok := parsePeriod(r.Period); ok {
		rec.Period = p
		rec.Year = models.PeriodYear(p)
		rec.Month = models.PeriodMonth(p)
		rec.Quarter = models.QuarterLabel(rec.Month)
	}

	units, unitsOK := parseNumber(r.Units)
	if unitsOK && units >= 0 {
		rec.Units = units
	} else {
		unitsOK = false
	}
	if v, ok := parseNumber(r.PricedValue); ok {
		rec.PricedValue = v
	}
	if a, ok := parseNumber(r.Area); ok {
		rec.Area = a
	}

	rec.ValueBracket = models.NotAvailable
	if price, ok := unitFigure(r.UnitPrice, rec.PricedValue, rec.Units); ok {
		rec.ValueBracket = ValueBracket(price)
	}
	rec.AreaBracket = models.NotAvailable
	if area, ok := unitFigure(r.UnitArea, rec.Area, rec.Units); ok {
		rec.AreaBracket = AreaBracket(area)
	}

	rec.Valid = rec.Period != 0 && rec.Status != models.StatusUnknown && unitsOK
	return rec
}

// unitFigure returns the per-unit value: the explicit cell when present,
// otherwise total/units.
func unitFigure(cell string, total, units float64) (float64, bool) {
	if v, ok := parseNumber(cell); ok {
		return v, true
	}
	if units > 0 && total != 0 {
		return total / units, true
	}
	return 0, false
}

// MaxPeriod returns the latest period present in rows, or 0 when there is
// none. Rows flagged malformed for another reason (unknown status, bad
// units) still count when their period parsed. Renderers compare it with each period to flag partial quarters and
// years.
func MaxPeriod(rows []*models.MarketRecord) int {
	max := 0
	for _, r := range rows {
		if r.Period > max {
			max = r.Period
		}
	}
	return max
}
