// plover
// (C) 2025, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package temporal checks the chronological consistency of the
// clinical data: no events in the future, no deaths before birth, no
// care after death.
package temporal

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
	"github.com/caas-team/plover/pkg/omop"
)

// CheckerName is the registered name of the temporal checker.
const CheckerName = "temporal"

const (
	CheckFutureDates           = "future_dates"
	CheckBirthDeathConsistency = "birth_death_consistency"
	CheckEventsAfterDeath      = "events_after_death"
	CheckVisitDateConsistency  = "visit_date_consistency"
	CheckAgeTemporalIssues     = "age_temporal_issues"
)

var _ checks.Checker = (*Temporal)(nil)

// Temporal implements the temporal consistency category checker. Its
// rules are zero tolerance, so it carries no thresholds.
type Temporal struct {
	checks.Base
}

// NewChecker creates a new temporal checker.
func NewChecker(ds datasource.DataSource, _ config.Thresholds) checks.Checker {
	return &Temporal{Base: checks.NewBase(CheckerName, ds)}
}

// Checks returns the names of the checks this checker owns.
func (c *Temporal) Checks() []string {
	return []string{
		CheckFutureDates,
		CheckBirthDeathConsistency,
		CheckEventsAfterDeath,
		CheckVisitDateConsistency,
		CheckAgeTemporalIssues,
	}
}

// Run executes all temporal checks.
func (c *Temporal) Run(ctx context.Context) (map[string]checks.Result, error) {
	datedTables := []string{
		"condition_occurrence", "drug_exposure", "procedure_occurrence",
		"measurement", "visit_occurrence",
	}

	return c.RunChecks(ctx, []checks.Check{
		{Name: CheckFutureDates, Tables: datedTables, Run: c.FutureDates},
		{Name: CheckBirthDeathConsistency, Tables: []string{"person", "death"}, Run: c.BirthDeathConsistency},
		{Name: CheckEventsAfterDeath, Tables: append([]string{"death"}, datedTables[:4]...), Run: c.EventsAfterDeath},
		{Name: CheckVisitDateConsistency, Tables: []string{"visit_occurrence"}, Run: c.VisitDateConsistency},
		{Name: CheckAgeTemporalIssues, Tables: []string{"person", "condition_occurrence", "drug_exposure", "visit_occurrence"}, Run: c.AgeTemporalIssues},
	})
}

// Schema provides the schema of the data that will be provided
// by the temporal checker.
func (c *Temporal) Schema() (*openapi3.SchemaRef, error) {
	return checks.SchemaForResults()
}

// FutureDates fails on any record dated after the evaluation time.
func (c *Temporal) FutureDates(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.FutureDates())
	if err != nil {
		return checks.ErrorResult("future date query failed", err)
	}

	var total int64
	subs := make([]checks.Result, 0, len(rows))
	for _, row := range rows {
		count := row.Int("future_count")
		total += count
		subs = append(subs, checks.Result{
			Status: checks.ClassifyZeroTolerance(count),
			Message: fmt.Sprintf("table %q has %d records with future %s",
				row.String("table_name"), count, row.String("date_field")),
			Metrics: map[string]float64{"future_count": float64(count)},
		})
	}

	return checks.Result{
		Status:     checks.ClassifyZeroTolerance(total),
		Message:    fmt.Sprintf("found %d records with future dates", total),
		Metrics:    map[string]float64{"future_count": float64(total)},
		SubResults: subs,
		Data:       rows,
	}
}

// BirthDeathConsistency fails on deaths recorded before birth or at an
// age above 120 years.
func (c *Temporal) BirthDeathConsistency(ctx context.Context) checks.Result {
	beforeBirth, err := c.Count(ctx, omop.DeathsBeforeBirth(), "inconsistent_count")
	if err != nil {
		return checks.ErrorResult("death before birth query failed", err)
	}
	veryOld, err := c.Count(ctx, omop.VeryOldDeaths(), "very_old_deaths")
	if err != nil {
		return checks.ErrorResult("implausible death age query failed", err)
	}

	total := beforeBirth + veryOld
	return checks.Result{
		Status:  checks.ClassifyZeroTolerance(total),
		Message: fmt.Sprintf("found %d birth/death inconsistencies", total),
		Metrics: map[string]float64{
			"deaths_before_birth": float64(beforeBirth),
			"very_old_deaths":     float64(veryOld),
		},
	}
}

// EventsAfterDeath fails on clinical events dated after the subject's
// death.
func (c *Temporal) EventsAfterDeath(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.EventsAfterDeath())
	if err != nil {
		return checks.ErrorResult("events after death query failed", err)
	}

	var total int64
	subs := make([]checks.Result, 0, len(rows))
	for _, row := range rows {
		count := row.Int("events_after_death")
		total += count
		subs = append(subs, checks.Result{
			Status:  checks.ClassifyZeroTolerance(count),
			Message: fmt.Sprintf("%d %s events after death", count, row.String("event_type")),
			Metrics: map[string]float64{"events_after_death": float64(count)},
		})
	}

	return checks.Result{
		Status:     checks.ClassifyZeroTolerance(total),
		Message:    fmt.Sprintf("found %d events after death", total),
		Metrics:    map[string]float64{"events_after_death": float64(total)},
		SubResults: subs,
		Data:       rows,
	}
}

// VisitDateConsistency checks visit start and end dates. Visits ending
// before they started fail, very long visits only warn.
func (c *Temporal) VisitDateConsistency(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.VisitDateConsistency())
	if err != nil {
		return checks.ErrorResult("visit date query failed", err)
	}
	if len(rows) == 0 {
		return checks.Result{Status: checks.StatusWarning, Message: "no visit data available"}
	}

	row := rows[0]
	issues := row.Int("end_before_start") + row.Int("negative_duration")
	longVisits := row.Int("very_long_visits")

	status := checks.StatusPass
	message := "visit dates are consistent"
	switch {
	case issues > 0:
		status = checks.StatusFail
		message = fmt.Sprintf("found %d visits ending before they started", issues)
	case longVisits > 0:
		status = checks.StatusWarning
		message = fmt.Sprintf("found %d visits longer than a year", longVisits)
	}

	return checks.Result{
		Status:  status,
		Message: message,
		Data:    rows,
		Metrics: map[string]float64{
			"total_visits":     row.Float("total_visits"),
			"end_before_start": float64(issues),
			"very_long_visits": float64(longVisits),
			"avg_duration":     row.Float("avg_duration"),
		},
	}
}

// AgeTemporalIssues fails on clinical events dated before the
// subject's calculated birth date.
func (c *Temporal) AgeTemporalIssues(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.EventsBeforeBirth())
	if err != nil {
		return checks.ErrorResult("events before birth query failed", err)
	}

	var total int64
	subs := make([]checks.Result, 0, len(rows))
	for _, row := range rows {
		count := row.Int("issue_count")
		total += count
		subs = append(subs, checks.Result{
			Status:  checks.ClassifyZeroTolerance(count),
			Message: fmt.Sprintf("%s: %d records", row.String("issue_type"), count),
			Metrics: map[string]float64{"issue_count": float64(count)},
		})
	}

	return checks.Result{
		Status:     checks.ClassifyZeroTolerance(total),
		Message:    fmt.Sprintf("found %d events before birth", total),
		Metrics:    map[string]float64{"issue_count": float64(total)},
		SubResults: subs,
		Data:       rows,
	}
}
