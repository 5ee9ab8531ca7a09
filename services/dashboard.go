package services

import (
	"fmt"

	"market-dashboard/models"
	"market-dashboard/utils"
)

// Dashboard holds every table of the market dashboard. It is computed in one
// pass from an immutable row set and never updated in place.
type Dashboard struct {
	Queries   []Query
	Series    map[string]models.Series // by Query.ID
	IVV       models.Series
	Launches  LaunchTable
	CrossTabs *CrossTabs

	// MaxPeriod is the latest period in the data, used to flag partial
	// quarters and years.
	MaxPeriod int
	Rows      int
	Malformed int
}

// Engine computes dashboards.
type Engine struct {
	crossTabs *CrossTabBuilder
	logger    *utils.Logger
}

// NewEngine creates an Engine pricing post-delivery spend with spend.
func NewEngine(spend *SpendModel, logger *utils.Logger) *Engine {
	return &Engine{crossTabs: NewCrossTabBuilder(spend, logger), logger: logger}
}

// Build aggregates rows into a Dashboard. Errors only come from invalid
// query definitions.
func (e *Engine) Build(rows []*models.MarketRecord) (*Dashboard, error) {
	d := &Dashboard{
		Queries:   DashboardQueries,
		Series:    make(map[string]models.Series, len(DashboardQueries)),
		MaxPeriod: MaxPeriod(rows),
		Rows:      len(rows),
	}
	for _, r := range rows {
		if !r.Valid {
			d.Malformed++
		}
	}

	for _, q := range DashboardQueries {
		s, err := q.Run(rows)
		if err != nil {
			return nil, fmt.Errorf("dashboard: query %s: %w", q.ID, err)
		}
		d.Series[q.ID] = s
	}

	d.IVV = IVV(rows, SaleStatuses, OfferStatuses)

	launches, err := BuildLaunchTable(rows)
	if err != nil {
		return nil, fmt.Errorf("dashboard: launches: %w", err)
	}
	d.Launches = launches
	d.CrossTabs = e.crossTabs.Build(rows)

	e.logger.Info("[engine] Dashboard built: %d rows, %d months, latest period %d",
		d.Rows, len(d.IVV.Monthly), d.MaxPeriod)
	return d, nil
}
