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

// Package conceptmapping checks the vocabulary mapping quality of the
// clinical data: unmapped source codes, standard concept usage,
// vocabulary coverage and domain assignment.
package conceptmapping

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
	"github.com/caas-team/plover/pkg/omop"
)

// CheckerName is the registered name of the concept mapping checker.
const CheckerName = "concept_mapping"

const (
	CheckUnmappedConcepts   = "unmapped_concepts"
	CheckStandardConcepts   = "standard_concepts"
	CheckVocabularyCoverage = "vocabulary_coverage"
	CheckDomainIntegrity    = "domain_integrity"
)

var _ checks.Checker = (*ConceptMapping)(nil)

// ConceptMapping implements the concept mapping category checker.
type ConceptMapping struct {
	checks.Base
	cfg config.ConceptMappingThresholds
}

// NewChecker creates a new concept mapping checker.
func NewChecker(ds datasource.DataSource, t config.Thresholds) checks.Checker {
	return &ConceptMapping{
		Base: checks.NewBase(CheckerName, ds),
		cfg:  t.ConceptMapping,
	}
}

// Checks returns the names of the checks this checker owns.
func (c *ConceptMapping) Checks() []string {
	return []string{
		CheckUnmappedConcepts,
		CheckStandardConcepts,
		CheckVocabularyCoverage,
		CheckDomainIntegrity,
	}
}

// Run executes all concept mapping checks.
func (c *ConceptMapping) Run(ctx context.Context) (map[string]checks.Result, error) {
	return c.RunChecks(ctx, []checks.Check{
		{Name: CheckUnmappedConcepts, Run: c.UnmappedConcepts},
		{Name: CheckStandardConcepts, Tables: []string{"condition_occurrence", "concept"}, Run: c.StandardConcepts},
		{Name: CheckVocabularyCoverage, Tables: []string{"vocabulary", "concept", "condition_occurrence"}, Run: c.VocabularyCoverage},
		{Name: CheckDomainIntegrity, Tables: []string{"concept"}, Run: c.DomainIntegrity},
	})
}

// Schema provides the schema of the data that will be provided
// by the concept mapping checker.
func (c *ConceptMapping) Schema() (*openapi3.SchemaRef, error) {
	return checks.SchemaForResults()
}

// UnmappedConcepts grades the share of records mapped to the sentinel
// concept id 0 per clinical domain.
func (c *ConceptMapping) UnmappedConcepts(ctx context.Context) checks.Result {
	subs := make([]checks.Result, 0, len(omop.Domains))
	var unmapped int64

	for _, d := range omop.Domains {
		if !c.Base.TableExists(ctx, d.Table) {
			subs = append(subs, checks.Result{
				Status:  checks.StatusWarning,
				Message: fmt.Sprintf("table %q does not exist", d.Table),
			})
			continue
		}

		rows, err := c.DataSource.Query(ctx, omop.UnmappedConcepts(d))
		if err != nil {
			subs = append(subs, checks.ErrorResult(fmt.Sprintf("unmapped concept query for %s failed", d.Name), err))
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
		pct := row.Float("unmapped_percentage")
		unmapped += row.Int("unmapped_count")
		subs = append(subs, checks.Result{
			Status:  checks.ClassifyPercent(pct, c.cfg.UnmappedWarning, c.cfg.UnmappedFail),
			Message: fmt.Sprintf("domain %s has %.2f%% unmapped concepts", d.Name, pct),
			Data:    rows,
			Metrics: map[string]float64{"unmapped_percentage": pct},
		})
	}

	return checks.Result{
		Status:     checks.WorstOf(subs),
		Message:    fmt.Sprintf("found %d unmapped records across %d domains", unmapped, len(omop.Domains)),
		Metrics:    map[string]float64{"unmapped_count": float64(unmapped)},
		SubResults: subs,
	}
}

// StandardConcepts grades the share of condition records mapped to a
// standard concept.
func (c *ConceptMapping) StandardConcepts(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.StandardConceptUsage())
	if err != nil {
		return checks.ErrorResult("standard concept usage query failed", err)
	}
	if len(rows) == 0 {
		return checks.Result{Status: checks.StatusWarning, Message: "no concept usage data found"}
	}

	var standardPct float64
	for _, row := range rows {
		if row.String("standard_concept") == "S" {
			standardPct = row.Float("percentage")
		}
	}

	return checks.Result{
		Status:  checks.ClassifyFloor(standardPct, c.cfg.StandardPass, c.cfg.StandardWarn),
		Message: fmt.Sprintf("%.2f%% of condition records use standard concepts", standardPct),
		Data:    rows,
		Metrics: map[string]float64{"standard_percentage": standardPct},
	}
}

// VocabularyCoverage warns when fewer vocabularies are in use than
// expected for a real-world data set.
func (c *ConceptMapping) VocabularyCoverage(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.VocabularyCoverage())
	if err != nil {
		return checks.ErrorResult("vocabulary coverage query failed", err)
	}

	count := int64(len(rows))
	status := checks.StatusPass
	if count < c.cfg.MinVocabularies {
		status = checks.StatusWarning
	}

	return checks.Result{
		Status:  status,
		Message: fmt.Sprintf("%d vocabularies in use", count),
		Data:    rows,
		Metrics: map[string]float64{"vocabulary_count": float64(count)},
	}
}

// DomainIntegrity fails on records whose concept belongs to a
// different domain than the table they appear in.
func (c *ConceptMapping) DomainIntegrity(ctx context.Context) checks.Result {
	domains := omop.Domains[:3] // Condition, Drug and Procedure
	subs := make([]checks.Result, 0, len(domains))
	var violations int64

	for _, d := range domains {
		if !c.Base.TableExists(ctx, d.Table) {
			subs = append(subs, checks.Result{
				Status:  checks.StatusWarning,
				Message: fmt.Sprintf("table %q does not exist", d.Table),
			})
			continue
		}

		count, err := c.Count(ctx, omop.DomainIntegrity(d), "violation_count")
		if err != nil {
			subs = append(subs, checks.ErrorResult(fmt.Sprintf("domain integrity query for %s failed", d.Name), err))
			continue
		}

		violations += count
		subs = append(subs, checks.Result{
			Status:  checks.ClassifyZeroTolerance(count),
			Message: fmt.Sprintf("domain %s has %d misassigned concepts", d.Name, count),
			Metrics: map[string]float64{"violation_count": float64(count)},
		})
	}

	return checks.Result{
		Status:     checks.WorstOf(subs),
		Message:    fmt.Sprintf("found %d domain integrity violations", violations),
		Metrics:    map[string]float64{"violation_count": float64(violations)},
		SubResults: subs,
	}
}
