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

package referential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
	"github.com/caas-team/plover/pkg/omop"
)

func newChecker(ds datasource.DataSource) *Referential {
	return NewChecker(ds, config.DefaultThresholds()).(*Referential)
}

func TestChecker_Checks(t *testing.T) {
	c := newChecker(datasource.NewMock())
	assert.Equal(t, []string{
		"foreign_key_violations",
		"orphaned_records",
		"person_id_consistency",
		"visit_relationships",
		"concept_integrity",
	}, c.Checks())
	assert.Equal(t, "referential", c.Name())
}

func TestForeignKeyViolations(t *testing.T) {
	t.Run("intact references pass", func(t *testing.T) {
		mock := datasource.NewMock().
			ScriptRows("violation_count", datasource.Row{"violation_count": int64(0)})

		res := newChecker(mock).ForeignKeyViolations(context.Background())

		assert.Equal(t, checks.StatusPass, res.Status)
		assert.Len(t, res.SubResults, len(omop.Relationships))
	})

	t.Run("two dangling visit references fail the check", func(t *testing.T) {
		mock := datasource.NewMock().
			ScriptRows("LEFT JOIN visit_occurrence p ON c.visit_occurrence_id", datasource.Row{"violation_count": int64(2)}).
			ScriptRows("violation_count", datasource.Row{"violation_count": int64(0)})

		res := newChecker(mock).ForeignKeyViolations(context.Background())

		assert.Equal(t, checks.StatusFail, res.Status)
		assert.Equal(t, float64(2), res.Metrics["violation_count"])

		var failing *checks.Result
		for i := range res.SubResults {
			if res.SubResults[i].Status == checks.StatusFail {
				require.Nil(t, failing, "exactly one relationship must fail")
				failing = &res.SubResults[i]
			}
		}
		require.NotNil(t, failing)
		assert.Equal(t, float64(2), failing.Metrics["violation_count"])
		assert.Contains(t, failing.Message, "Condition to Visit")
	})
}

func TestOrphanedRecords(t *testing.T) {
	tests := []struct {
		name    string
		orphans int64
		want    checks.Status
	}{
		{"no orphans pass", 0, checks.StatusPass},
		{"few orphans warn", 5, checks.StatusWarning},
		{"many orphans fail", 150, checks.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := datasource.NewMock().
				ScriptRows("NOT EXISTS (\n\tSELECT 1 FROM visit_occurrence", datasource.Row{"orphan_count": tt.orphans}).
				ScriptRows("orphan_count", datasource.Row{"orphan_count": int64(0)})

			res := newChecker(mock).OrphanedRecords(context.Background())

			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestPersonIDConsistency(t *testing.T) {
	consistency := func(missing int64) datasource.Row {
		return datasource.Row{
			"persons_in_person_table":                    int64(1000),
			"persons_in_clinical_tables":                 int64(990),
			"clinical_persons_missing_from_person_table": missing,
		}
	}

	t.Run("all ids known pass", func(t *testing.T) {
		mock := datasource.NewMock().ScriptRows("all_clinical_persons", consistency(0))

		res := newChecker(mock).PersonIDConsistency(context.Background())

		assert.Equal(t, checks.StatusPass, res.Status)
	})

	t.Run("any unknown id fails", func(t *testing.T) {
		mock := datasource.NewMock().ScriptRows("all_clinical_persons", consistency(3))

		res := newChecker(mock).PersonIDConsistency(context.Background())

		assert.Equal(t, checks.StatusFail, res.Status)
		assert.Equal(t, float64(3), res.Metrics["missing_person_ids"])
	})
}

func TestVisitRelationships(t *testing.T) {
	visits := func(withoutPerson, endBeforeStart int64) datasource.Row {
		return datasource.Row{
			"visits_without_ids":        int64(0),
			"visits_without_person":     withoutPerson,
			"visits_without_start_date": int64(0),
			"visits_end_before_start":   endBeforeStart,
			"total_visits":              int64(800),
		}
	}

	tests := []struct {
		name string
		row  datasource.Row
		want checks.Status
	}{
		{"structurally sound visits pass", visits(0, 0), checks.StatusPass},
		{"few issues warn", visits(1, 1), checks.StatusWarning},
		{"many issues fail", visits(10, 5), checks.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := datasource.NewMock().ScriptRows("unique_persons_with_visits", tt.row)

			res := newChecker(mock).VisitRelationships(context.Background())

			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestConceptIntegrity(t *testing.T) {
	t.Run("all concepts known pass", func(t *testing.T) {
		mock := datasource.NewMock().
			ScriptRows("missing_concepts", datasource.Row{"missing_concepts": int64(0)})

		res := newChecker(mock).ConceptIntegrity(context.Background())

		assert.Equal(t, checks.StatusPass, res.Status)
		assert.Len(t, res.SubResults, len(omop.Domains))
	})

	t.Run("unknown drug concepts fail the check", func(t *testing.T) {
		mock := datasource.NewMock().
			ScriptRows("c.concept_id = t.drug_concept_id", datasource.Row{"missing_concepts": int64(7)}).
			ScriptRows("missing_concepts", datasource.Row{"missing_concepts": int64(0)})

		res := newChecker(mock).ConceptIntegrity(context.Background())

		assert.Equal(t, checks.StatusFail, res.Status)
		assert.Equal(t, float64(7), res.Metrics["missing_concepts"])

		var failing *checks.Result
		for i := range res.SubResults {
			if res.SubResults[i].Status == checks.StatusFail {
				require.Nil(t, failing, "exactly one domain must fail")
				failing = &res.SubResults[i]
			}
		}
		require.NotNil(t, failing)
		assert.Contains(t, failing.Message, "Drug")
		assert.Equal(t, float64(7), failing.Metrics["missing_concepts"])
	})

	t.Run("missing clinical table is skipped with a warning", func(t *testing.T) {
		mock := datasource.NewMock().WithoutTable("measurement")

		res := newChecker(mock).ConceptIntegrity(context.Background())

		require.Len(t, res.SubResults, len(omop.Domains))
		assert.Equal(t, checks.StatusWarning, res.Status)
		for _, q := range mock.Executed() {
			assert.NotContains(t, q, "t.measurement_concept_id")
		}
	})
}

func TestRun_MissingConceptTable(t *testing.T) {
	mock := datasource.NewMock().WithoutTable("concept")

	c := newChecker(mock)
	results, err := c.Run(context.Background())
	require.NoError(t, err)

	res, ok := results["concept_integrity"]
	require.True(t, ok)
	assert.Equal(t, checks.StatusWarning, res.Status)
	assert.Contains(t, res.Message, "concept")
	for _, q := range mock.Executed() {
		assert.NotContains(t, q, "missing_concepts")
	}
}

func TestRun_SummaryCountsFailures(t *testing.T) {
	mock := datasource.NewMock().
		ScriptRows("LEFT JOIN visit_occurrence p ON c.visit_occurrence_id", datasource.Row{"violation_count": int64(2)}).
		ScriptRows("violation_count", datasource.Row{"violation_count": int64(0)}).
		ScriptRows("orphan_count", datasource.Row{"orphan_count": int64(0)}).
		ScriptRows("all_clinical_persons", datasource.Row{"clinical_persons_missing_from_person_table": int64(0)}).
		ScriptRows("unique_persons_with_visits", datasource.Row{"total_visits": int64(800)})

	c := newChecker(mock)
	_, err := c.Run(context.Background())
	require.NoError(t, err)

	summary := c.Summary()
	assert.GreaterOrEqual(t, summary.Failed, 1)
	assert.Zero(t, summary.Errored)
}

func TestForeignKeyViolations_MissingParentTable(t *testing.T) {
	mock := datasource.NewMock().WithoutTable("visit_occurrence")

	res := newChecker(mock).ForeignKeyViolations(context.Background())

	// The three person relationships still pass, the visit one is skipped.
	require.Len(t, res.SubResults, len(omop.Relationships))
	assert.Equal(t, checks.StatusWarning, res.Status)
	for _, q := range mock.Executed() {
		assert.NotContains(t, q, "JOIN visit_occurrence")
	}
}
