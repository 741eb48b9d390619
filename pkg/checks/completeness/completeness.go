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

// Package completeness checks how completely the core OMOP tables are
// populated: null rates in key fields, must-never-be-null columns,
// person demographics and per-domain source attribution.
package completeness

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
	"github.com/caas-team/plover/pkg/omop"
)

// CheckerName is the registered name of the completeness checker.
const CheckerName = "completeness"

const (
	CheckTableCompleteness  = "table_completeness"
	CheckCriticalFields     = "critical_fields"
	CheckPersonCompleteness = "person_completeness"
	CheckDomainCompleteness = "domain_completeness"
	CheckEmptyTables        = "empty_tables"
)

var _ checks.Checker = (*Completeness)(nil)

var errNoPersons = errors.New("person table holds no rows")

// Completeness implements the completeness category checker.
type Completeness struct {
	checks.Base
	cfg config.CompletenessThresholds
}

// NewChecker creates a new completeness checker.
func NewChecker(ds datasource.DataSource, t config.Thresholds) checks.Checker {
	return &Completeness{
		Base: checks.NewBase(CheckerName, ds),
		cfg:  t.Completeness,
	}
}

// Checks returns the names of the checks this checker owns.
func (c *Completeness) Checks() []string {
	return []string{
		CheckTableCompleteness,
		CheckCriticalFields,
		CheckPersonCompleteness,
		CheckDomainCompleteness,
		CheckEmptyTables,
	}
}

// Run executes all completeness checks.
func (c *Completeness) Run(ctx context.Context) (map[string]checks.Result, error) {
	return c.RunChecks(ctx, []checks.Check{
		{Name: CheckTableCompleteness, Run: c.TableCompleteness},
		{Name: CheckCriticalFields, Tables: criticalFieldTables(), Run: c.CriticalFields},
		{Name: CheckPersonCompleteness, Tables: []string{"person"}, Run: c.PersonCompleteness},
		{Name: CheckDomainCompleteness, Run: c.DomainCompleteness},
		{Name: CheckEmptyTables, Tables: omop.CoreTables, Run: c.EmptyTables},
	})
}

// Schema provides the schema of the data that will be provided
// by the completeness checker.
func (c *Completeness) Schema() (*openapi3.SchemaRef, error) {
	return checks.SchemaForResults()
}

// TableCompleteness measures the null percentage of the key fields of
// every core table. Tables absent from the schema become a warning sub
// result instead of a query attempt.
func (c *Completeness) TableCompleteness(ctx context.Context) checks.Result {
	subs := make([]checks.Result, 0, len(omop.CoreTables))
	var checked, failing int

	for _, table := range omop.CoreTables {
		if !c.Base.TableExists(ctx, table) {
			subs = append(subs, checks.Result{
				Status:  checks.StatusWarning,
				Message: fmt.Sprintf("table %q does not exist", table),
			})
			continue
		}

		rows, err := c.DataSource.Query(ctx, omop.CompletenessCheck(table, omop.KeyFields[table]))
		if err != nil {
			subs = append(subs, checks.ErrorResult(fmt.Sprintf("completeness query for table %q failed", table), err))
			continue
		}
		if len(rows) == 0 || rows[0].Int("total_records") == 0 {
			subs = append(subs, checks.Result{
				Status:  checks.StatusWarning,
				Message: fmt.Sprintf("table %q has no records", table),
				Data:    rows,
			})
			continue
		}

		checked++
		pct := rows[0].Float("null_percentage")
		status := checks.ClassifyPercent(pct, c.cfg.TableWarning, c.cfg.TableFail)
		if status == checks.StatusFail {
			failing++
		}
		subs = append(subs, checks.Result{
			Status:  status,
			Message: fmt.Sprintf("table %q has %.2f%% null key fields", table, pct),
			Data:    rows,
			Metrics: map[string]float64{"null_percentage": pct},
		})
	}

	return checks.Result{
		Status:  checks.WorstOf(subs),
		Message: fmt.Sprintf("checked key field completeness for %d tables", checked),
		Metrics: map[string]float64{
			"tables_checked": float64(checked),
			"failing_tables": float64(failing),
		},
		SubResults: subs,
	}
}

// CriticalFields verifies that the must-never-be-null columns hold no
// nulls. Any null is a failure, there is no tolerated band.
func (c *Completeness) CriticalFields(ctx context.Context) checks.Result {
	subs := make([]checks.Result, 0, len(omop.CriticalFields))
	var violations int64

	for _, f := range omop.CriticalFields {
		count, err := c.Count(ctx, omop.CriticalFieldNulls(f), "null_count")
		if err != nil {
			subs = append(subs, checks.ErrorResult(fmt.Sprintf("null count for %s failed", f.Name), err))
			continue
		}

		violations += count
		subs = append(subs, checks.Result{
			Status:  checks.ClassifyZeroTolerance(count),
			Message: fmt.Sprintf("%s: %d null values", f.Name, count),
			Metrics: map[string]float64{"null_count": float64(count)},
		})
	}

	return checks.Result{
		Status:     checks.WorstOf(subs),
		Message:    fmt.Sprintf("found %d critical field violations", violations),
		Metrics:    map[string]float64{"violation_count": float64(violations)},
		SubResults: subs,
	}
}

// PersonCompleteness grades the demographics quality of the person
// table as a single completeness score.
func (c *Completeness) PersonCompleteness(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.PersonDemographicsQuality())
	if err != nil {
		return checks.ErrorResult("person demographics query failed", err)
	}
	if len(rows) == 0 || rows[0].Int("total_persons") == 0 {
		return checks.ErrorResult("no person data found", errNoPersons)
	}

	row := rows[0]
	score := row.Float("completeness_score")
	issues := row.Int("invalid_birth_year_low") +
		row.Int("invalid_birth_year_high") +
		row.Int("unrealistic_age")

	status := checks.ClassifyFloor(score, c.cfg.PersonPass, c.cfg.PersonWarn)
	if status == checks.StatusPass && issues > 0 {
		status = checks.StatusWarning
	}

	return checks.Result{
		Status:  status,
		Message: fmt.Sprintf("person completeness score %.2f%% with %d quality issues", score, issues),
		Data:    rows,
		Metrics: map[string]float64{
			"total_persons":      row.Float("total_persons"),
			"completeness_score": score,
			"quality_issues":     float64(issues),
		},
	}
}

// DomainCompleteness scores the source value and type concept coverage
// of the condition and drug domains.
func (c *Completeness) DomainCompleteness(ctx context.Context) checks.Result {
	domains := omop.Domains[:2] // Condition and Drug
	subs := make([]checks.Result, 0, len(domains))

	for _, d := range domains {
		if !c.Base.TableExists(ctx, d.Table) {
			subs = append(subs, checks.Result{
				Status:  checks.StatusWarning,
				Message: fmt.Sprintf("table %q does not exist", d.Table),
			})
			continue
		}

		rows, err := c.DataSource.Query(ctx, omop.DomainCompleteness(d))
		if err != nil {
			subs = append(subs, checks.ErrorResult(fmt.Sprintf("domain completeness query for %s failed", d.Name), err))
			continue
		}
		if len(rows) == 0 || rows[0].Int("total_records") == 0 {
			subs = append(subs, checks.Result{
				Status:  checks.StatusWarning,
				Message: fmt.Sprintf("domain %s has no records", d.Name),
			})
			continue
		}

		row := rows[0]
		total := row.Float("total_records")
		missing := row.Float("missing_source_value") + row.Float("missing_type_concept")
		score := 100 - missing*100/total/2

		subs = append(subs, checks.Result{
			Status:  checks.ClassifyFloor(score, c.cfg.DomainPass, c.cfg.DomainWarn),
			Message: fmt.Sprintf("domain %s completeness score %.2f%%", d.Name, score),
			Data:    rows,
			Metrics: map[string]float64{"completeness_score": score},
		})
	}

	return checks.Result{
		Status:     checks.WorstOf(subs),
		Message:    fmt.Sprintf("checked completeness for %d domains", len(domains)),
		SubResults: subs,
	}
}

// EmptyTables flags core tables without any rows. An empty table is
// notable but not a rule violation.
func (c *Completeness) EmptyTables(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.TableRowCounts())
	if err != nil {
		return checks.ErrorResult("row count query failed", err)
	}

	subs := make([]checks.Result, 0, len(rows))
	var empty int
	for _, row := range rows {
		count := row.Int("row_count")
		status := checks.StatusPass
		if count == 0 {
			status = checks.StatusWarning
			empty++
		}
		subs = append(subs, checks.Result{
			Status:  status,
			Message: fmt.Sprintf("table %q has %d rows", row.String("table_name"), count),
			Metrics: map[string]float64{"row_count": float64(count)},
		})
	}

	return checks.Result{
		Status:     checks.WorstOf(subs),
		Message:    fmt.Sprintf("%d of %d core tables are empty", empty, len(rows)),
		Metrics:    map[string]float64{"empty_tables": float64(empty)},
		SubResults: subs,
		Data:       rows,
	}
}

func criticalFieldTables() []string {
	seen := map[string]bool{}
	tables := make([]string, 0, len(omop.CriticalFields))
	for _, f := range omop.CriticalFields {
		if !seen[f.Table] {
			seen[f.Table] = true
			tables = append(tables, f.Table)
		}
	}
	return tables
}
