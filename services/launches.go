package services

import (
	"sort"

	"market-dashboard/models"
)

// CountLaunches lists, per month, the projects launched for the first time
// in their calendar year.
//
// Only valid OfferLaunch rows with units and a known project identity take
// part. A project that reappears later in the same year (a new tower or
// phase) is not counted again; the same project launching in a later year
// counts as a new launch of that year.
func CountLaunches(rows []*models.MarketRecord) models.LaunchIndex {
	candidates := make([]*models.MarketRecord, 0)
	for _, r := range rows {
		if !r.Valid || r.Status != models.OfferLaunch || r.Units <= 0 || r.Period == 0 {
			continue
		}
		if r.ProjectIdentity == "" || r.ProjectIdentity == models.NotAvailable {
			continue
		}
		candidates = append(candidates, r)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Period < candidates[j].Period
	})

	type yearProject struct {
		year int
		key  models.ProjectKey
	}
	seen := make(map[yearProject]struct{})
	index := make(models.LaunchIndex)

	for _, r := range candidates {
		k := yearProject{year: models.PeriodYear(r.Period), key: r.Key()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		index[r.Period] = append(index[r.Period], k.key)
	}
	return index
}

// CountsPerPeriod turns a LaunchIndex into project counts. Quarterly and
// yearly counts add up the monthly ones.
func CountsPerPeriod(index models.LaunchIndex) models.LaunchCounts {
	counts := models.LaunchCounts{
		Monthly:   make(map[int]int),
		Quarterly: make(map[string]int),
		Yearly:    make(map[string]int),
	}
	for period, projects := range index {
		n := len(projects)
		counts.Monthly[period] = n
		counts.Quarterly[models.QuarterKey(period)] += n
		counts.Yearly[models.YearKey(period)] += n
	}
	return counts
}

// LaunchTable pairs launched units with newly launched projects, the
// "units [projects]" columns of the launches table. Units come straight
// from the rows and are unaffected by project de-duplication.
type LaunchTable struct {
	Units    models.Series
	Projects models.LaunchCounts
	Index    models.LaunchIndex
}

// BuildLaunchTable computes unit totals and project counts of launches.
func BuildLaunchTable(rows []*models.MarketRecord) (LaunchTable, error) {
	units, err := QueryLaunchUnits.Run(rows)
	if err != nil {
		return LaunchTable{}, err
	}
	index := CountLaunches(rows)
	return LaunchTable{Units: units, Projects: CountsPerPeriod(index), Index: index}, nil
}
