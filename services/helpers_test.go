package services

import (
	"io"
	"math"
	"testing"

	"market-dashboard/config"
	"market-dashboard/models"
	"market-dashboard/utils"
)

func newTestLogger() *utils.Logger {
	return utils.NewLoggerTo(io.Discard)
}

func newTestSpend() *SpendModel {
	return NewSpendModel(config.DefaultMarket())
}

// rec builds a valid normalized record.
func rec(period int, status models.Status, units float64) *models.MarketRecord {
	return &models.MarketRecord{
		Period:       period,
		Year:         models.PeriodYear(period),
		Month:        models.PeriodMonth(period),
		Quarter:      models.QuarterLabel(models.PeriodMonth(period)),
		Status:       status,
		Neighborhood: "SETOR BUENO",
		Units:        units,
		Rooms:        "2",
		Valid:        true,
	}
}

func withValue(r *models.MarketRecord, value, area float64) *models.MarketRecord {
	r.PricedValue = value
	r.Area = area
	return r
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func assertApprox(t *testing.T, name string, got, want float64) {
	t.Helper()
	if !approx(got, want) {
		t.Errorf("%s = %v; want %v", name, got, want)
	}
}
