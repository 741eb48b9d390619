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

// Package referential checks the referential integrity of the clinical
// data across the fixed OMOP relationship set.
package referential

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
	"github.com/caas-team/plover/pkg/omop"
)

// CheckerName is the registered name of the referential integrity checker.
const CheckerName = "referential"

const (
	CheckForeignKeyViolations = "foreign_key_violations"
	CheckOrphanedRecords      = "orphaned_records"
	CheckPersonIDConsistency  = "person_id_consistency"
	CheckVisitRelationships   = "visit_relationships"
	CheckConceptIntegrity     = "concept_integrity"
)

var _ checks.Checker = (*Referential)(nil)

// Referential implements the referential integrity category checker.
type Referential struct {
	checks.Base
	cfg config.ReferentialThresholds
}

// NewChecker creates a new referential integrity checker.
func NewChecker(ds datasource.DataSource, t config.Thresholds) checks.Checker {
	return &Referential{
		Base: checks.NewBase(CheckerName, ds),
		cfg:  t.Referential,
	}
}

// Checks returns the names of the checks this checker owns.
func (c *Referential) Checks() []string {
	return []string{
		CheckForeignKeyViolations,
		CheckOrphanedRecords,
		CheckPersonIDConsistency,
		CheckVisitRelationships,
		CheckConceptIntegrity,
	}
}

// Run executes all referential integrity checks.
func (c *Referential) Run(ctx context.Context) (map[string]checks.Result, error) {
	return c.RunChecks(ctx, []checks.Check{
		{Name: CheckForeignKeyViolations, Run: c.ForeignKeyViolations},
		{Name: CheckOrphanedRecords, Run: c.OrphanedRecords},
		{Name: CheckPersonIDConsistency, Tables: clinicalPersonTables(), Run: c.PersonIDConsistency},
		{Name: CheckVisitRelationships, Tables: []string{"visit_occurrence"}, Run: c.VisitRelationships},
		{Name: CheckConceptIntegrity, Tables: []string{"concept"}, Run: c.ConceptIntegrity},
	})
}

// Schema provides the schema of the data that will be provided
// by the referential integrity checker.
func (c *Referential) Schema() (*openapi3.SchemaRef, error) {
	return checks.SchemaForResults()
}

// ForeignKeyViolations fails on any child row referencing a missing
// parent, per declared relationship.
func (c *Referential) ForeignKeyViolations(ctx context.Context) checks.Result {
	subs := make([]checks.Result, 0, len(omop.Relationships))
	var violations int64

	for _, r := range omop.Relationships {
		if !c.relationshipTablesExist(ctx, r, &subs) {
			continue
		}

		count, err := c.Count(ctx, omop.ForeignKeyViolations(r), "violation_count")
		if err != nil {
			subs = append(subs, checks.ErrorResult(fmt.Sprintf("foreign key query for %s failed", r.Name), err))
			continue
		}

		violations += count
		subs = append(subs, checks.Result{
			Status:  checks.ClassifyZeroTolerance(count),
			Message: fmt.Sprintf("%s: %d violations", r.Name, count),
			Metrics: map[string]float64{"violation_count": float64(count)},
		})
	}

	return checks.Result{
		Status:     checks.WorstOf(subs),
		Message:    fmt.Sprintf("found %d foreign key violations", violations),
		Metrics:    map[string]float64{"violation_count": float64(violations)},
		SubResults: subs,
	}
}

// OrphanedRecords warns on child rows whose referenced parent does not
// exist. Small orphan counts are tolerated.
func (c *Referential) OrphanedRecords(ctx context.Context) checks.Result {
	subs := make([]checks.Result, 0, len(omop.OrphanChecks))
	var orphans int64

	for _, r := range omop.OrphanChecks {
		if !c.relationshipTablesExist(ctx, r, &subs) {
			continue
		}

		count, err := c.Count(ctx, omop.OrphanCount(r), "orphan_count")
		if err != nil {
			subs = append(subs, checks.ErrorResult(fmt.Sprintf("orphan query for %s failed", r.Name), err))
			continue
		}

		orphans += count
		subs = append(subs, checks.Result{
			Status:  checks.ClassifyCount(count, c.cfg.OrphanWarning),
			Message: fmt.Sprintf("%s: %d orphans", r.Name, count),
			Metrics: map[string]float64{"orphan_count": float64(count)},
		})
	}

	return checks.Result{
		Status:     checks.WorstOf(subs),
		Message:    fmt.Sprintf("found %d orphaned records", orphans),
		Metrics:    map[string]float64{"orphan_count": float64(orphans)},
		SubResults: subs,
	}
}

// PersonIDConsistency fails when clinical tables reference person ids
// missing from the person table.
func (c *Referential) PersonIDConsistency(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.PersonIDConsistency())
	if err != nil {
		return checks.ErrorResult("person id consistency query failed", err)
	}
	if len(rows) == 0 {
		return checks.Result{Status: checks.StatusWarning, Message: "no person id data available"}
	}

	row := rows[0]
	missing := row.Int("clinical_persons_missing_from_person_table")

	return checks.Result{
		Status:  checks.ClassifyZeroTolerance(missing),
		Message: fmt.Sprintf("%d clinical person ids missing from the person table", missing),
		Data:    rows,
		Metrics: map[string]float64{
			"persons_in_person_table":    row.Float("persons_in_person_table"),
			"persons_in_clinical_tables": row.Float("persons_in_clinical_tables"),
			"missing_person_ids":         float64(missing),
		},
	}
}

// VisitRelationships checks the structural integrity of the visit
// table, with a tolerated band for small issue counts.
func (c *Referential) VisitRelationships(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.VisitRelationships())
	if err != nil {
		return checks.ErrorResult("visit relationships query failed", err)
	}
	if len(rows) == 0 {
		return checks.Result{Status: checks.StatusWarning, Message: "no visit data available"}
	}

	row := rows[0]
	issues := row.Int("visits_without_ids") +
		row.Int("visits_without_person") +
		row.Int("visits_without_start_date") +
		row.Int("visits_end_before_start")

	return checks.Result{
		Status:  checks.ClassifyCount(issues, c.cfg.VisitIssueWarning),
		Message: fmt.Sprintf("found %d structural visit issues", issues),
		Data:    rows,
		Metrics: map[string]float64{
			"issue_count":  float64(issues),
			"total_visits": row.Float("total_visits"),
		},
	}
}

// ConceptIntegrity fails on clinical records referencing concept ids
// that do not exist in the concept table, per domain. Records mapped
// to the sentinel concept id 0 are not counted here; the concept
// mapping checker grades those.
func (c *Referential) ConceptIntegrity(ctx context.Context) checks.Result {
	subs := make([]checks.Result, 0, len(omop.Domains))
	var violations int64

	for _, d := range omop.Domains {
		if !c.Base.TableExists(ctx, d.Table) {
			subs = append(subs, checks.Result{
				Status:  checks.StatusWarning,
				Message: fmt.Sprintf("%s: table %q does not exist", d.Name, d.Table),
			})
			continue
		}

		count, err := c.Count(ctx, omop.MissingConcepts(d), "missing_concepts")
		if err != nil {
			subs = append(subs, checks.ErrorResult(fmt.Sprintf("concept integrity query for %s failed", d.Name), err))
			continue
		}

		violations += count
		subs = append(subs, checks.Result{
			Status:  checks.ClassifyZeroTolerance(count),
			Message: fmt.Sprintf("%s: %d records reference unknown concepts", d.Name, count),
			Metrics: map[string]float64{"missing_concepts": float64(count)},
		})
	}

	return checks.Result{
		Status:     checks.WorstOf(subs),
		Message:    fmt.Sprintf("found %d concept integrity violations", violations),
		Metrics:    map[string]float64{"missing_concepts": float64(violations)},
		SubResults: subs,
	}
}

// relationshipTablesExist guards both sides of a relationship. A
// missing table is recorded as a warning sub result.
func (c *Referential) relationshipTablesExist(ctx context.Context, r omop.Relationship, subs *[]checks.Result) bool {
	for _, table := range []string{r.ChildTable, r.ParentTable} {
		if !c.Base.TableExists(ctx, table) {
			*subs = append(*subs, checks.Result{
				Status:  checks.StatusWarning,
				Message: fmt.Sprintf("%s: table %q does not exist", r.Name, table),
			})
			return false
		}
	}
	return true
}

func clinicalPersonTables() []string {
	return []string{
		"person", "condition_occurrence", "drug_exposure",
		"procedure_occurrence", "measurement", "observation",
		"visit_occurrence",
	}
}
