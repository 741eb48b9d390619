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

package statistical

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
)

func newChecker(ds datasource.DataSource) *Statistical {
	return NewChecker(ds, config.DefaultThresholds()).(*Statistical)
}

func TestChecker_Checks(t *testing.T) {
	c := newChecker(datasource.NewMock())
	assert.Equal(t, []string{
		"age_outliers",
		"drug_quantity_outliers",
		"measurement_outliers",
		"visit_duration_outliers",
		"distribution_anomalies",
	}, c.Checks())
	assert.Equal(t, "statistical", c.Name())
}

func outlierRows(n int, build func(i int) datasource.Row) []datasource.Row {
	rows := make([]datasource.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, build(i))
	}
	return rows
}

func TestAgeOutliers(t *testing.T) {
	person := func(i int) datasource.Row {
		return datasource.Row{"person_id": int64(i), "year_of_birth": int64(1850), "current_age": int64(176)}
	}

	tests := []struct {
		name  string
		count int
		want  checks.Status
	}{
		{"no outliers pass", 0, checks.StatusPass},
		{"few outliers warn", 3, checks.StatusWarning},
		{"many outliers fail", 12, checks.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := datasource.NewMock().
				ScriptRows("current_age", outlierRows(tt.count, person)...)

			res := newChecker(mock).AgeOutliers(context.Background())

			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, float64(tt.count), res.Metrics["outlier_count"])
		})
	}
}

func TestDrugQuantityOutliers(t *testing.T) {
	exposure := func(i int) datasource.Row {
		return datasource.Row{"drug_exposure_id": int64(i), "quantity": 50000.0, "days_supply": int64(400)}
	}

	mock := datasource.NewMock().
		ScriptRows("days_supply", outlierRows(10, exposure)...)

	res := newChecker(mock).DrugQuantityOutliers(context.Background())

	assert.Equal(t, checks.StatusWarning, res.Status)
	assert.Equal(t, float64(10), res.Metrics["outlier_count"])
}

func TestMeasurementOutliers(t *testing.T) {
	vital := func(name string, minVal, maxVal float64) datasource.Row {
		return datasource.Row{
			"concept_name":      name,
			"measurement_count": int64(500),
			"min_value":         minVal,
			"max_value":         maxVal,
		}
	}

	t.Run("values inside the plausible ranges pass", func(t *testing.T) {
		mock := datasource.NewMock().ScriptRows("measurement_count",
			vital("Heart rate", 48, 160),
			vital("Body temperature", 35.2, 41.8),
		)

		res := newChecker(mock).MeasurementOutliers(context.Background())

		assert.Equal(t, checks.StatusPass, res.Status)
		assert.Zero(t, res.Metrics["outlier_count"])
	})

	t.Run("values outside a plausible range warn", func(t *testing.T) {
		mock := datasource.NewMock().ScriptRows("measurement_count",
			vital("Heart rate", 48, 160),
			vital("Body temperature", 20, 41.8),
		)

		res := newChecker(mock).MeasurementOutliers(context.Background())

		assert.Equal(t, checks.StatusWarning, res.Status)
		assert.Equal(t, float64(1), res.Metrics["outlier_count"])
		require.Len(t, res.SubResults, 2)
		assert.Equal(t, checks.StatusPass, res.SubResults[0].Status)
		assert.Equal(t, checks.StatusWarning, res.SubResults[1].Status)
	})

	t.Run("no measurement data warns", func(t *testing.T) {
		res := newChecker(datasource.NewMock()).MeasurementOutliers(context.Background())

		assert.Equal(t, checks.StatusWarning, res.Status)
	})
}

func TestVisitDurationOutliers(t *testing.T) {
	visit := func(i int) datasource.Row {
		return datasource.Row{
			"visit_occurrence_id": int64(i),
			"duration_days":       int64(-2),
		}
	}

	mock := datasource.NewMock().
		ScriptRows("duration_days", outlierRows(25, visit)...)

	res := newChecker(mock).VisitDurationOutliers(context.Background())

	assert.Equal(t, checks.StatusFail, res.Status)
	assert.Equal(t, float64(25), res.Metrics["outlier_count"])
}

func TestDistributionAnomalies(t *testing.T) {
	gender := func(name string, pct float64) datasource.Row {
		return datasource.Row{"gender": name, "count": int64(100), "percentage": pct}
	}
	ageGroup := func(group string, pct float64) datasource.Row {
		return datasource.Row{"age_group": group, "count": int64(100), "percentage": pct}
	}
	density := func(year, conditions int64) datasource.Row {
		return datasource.Row{"year": year, "total_conditions": conditions}
	}

	t.Run("unremarkable distributions pass", func(t *testing.T) {
		mock := datasource.NewMock().
			ScriptRows("p.gender_concept_id", gender("MALE", 49.5), gender("FEMALE", 50.5)).
			ScriptRows("AS age_group", ageGroup("18-30", 20), ageGroup("31-50", 35), ageGroup("51-70", 30), ageGroup("Over 70", 15)).
			ScriptRows("conditions_per_patient", density(2020, 1000), density(2021, 1100)).
			ScriptRows("duplicate_conditions", datasource.Row{"total_duplicate_groups": int64(0), "total_duplicate_records": int64(0)})

		res := newChecker(mock).DistributionAnomalies(context.Background())

		assert.Equal(t, checks.StatusPass, res.Status)
		assert.Zero(t, res.Metrics["anomaly_count"])
		require.Len(t, res.SubResults, 4)
		for _, sub := range res.SubResults {
			assert.Equal(t, checks.StatusPass, sub.Status)
		}
	})

	t.Run("skewed gender and duplicates warn", func(t *testing.T) {
		mock := datasource.NewMock().
			ScriptRows("p.gender_concept_id", gender("MALE", 80), gender("FEMALE", 20)).
			ScriptRows("AS age_group", ageGroup("18-30", 20), ageGroup("31-50", 35), ageGroup("51-70", 30)).
			ScriptRows("conditions_per_patient", density(2020, 1000), density(2021, 1100)).
			ScriptRows("duplicate_conditions", datasource.Row{"total_duplicate_groups": int64(120), "total_duplicate_records": int64(500)})

		res := newChecker(mock).DistributionAnomalies(context.Background())

		assert.Equal(t, checks.StatusWarning, res.Status)
		assert.Equal(t, float64(2), res.Metrics["anomaly_count"])
		require.Len(t, res.SubResults, 4)
		assert.Equal(t, checks.StatusWarning, res.SubResults[0].Status)
		assert.Contains(t, res.SubResults[0].Message, "heavily skewed")
		assert.Equal(t, checks.StatusWarning, res.SubResults[3].Status)
		assert.Contains(t, res.SubResults[3].Message, "duplicate condition records: 500")
	})

	t.Run("three or more anomalies fail", func(t *testing.T) {
		mock := datasource.NewMock().
			ScriptRows("p.gender_concept_id", gender("MALE", 95), gender("FEMALE", 5)).
			ScriptRows("AS age_group", ageGroup("18-30", 20), ageGroup("31-50", 35), ageGroup("51-70", 30)).
			ScriptRows("conditions_per_patient", density(2020, 1000), density(2021, 300)).
			ScriptRows("duplicate_conditions", datasource.Row{"total_duplicate_groups": int64(0), "total_duplicate_records": int64(0)})

		res := newChecker(mock).DistributionAnomalies(context.Background())

		assert.Equal(t, checks.StatusFail, res.Status)
		assert.Equal(t, float64(3), res.Metrics["anomaly_count"])
	})

	t.Run("missing age groups are an anomaly", func(t *testing.T) {
		mock := datasource.NewMock().
			ScriptRows("p.gender_concept_id", gender("MALE", 49.5), gender("FEMALE", 50.5)).
			ScriptRows("AS age_group", ageGroup("Under 18", 60), ageGroup("Over 70", 40)).
			ScriptRows("conditions_per_patient", density(2020, 1000), density(2021, 1100)).
			ScriptRows("duplicate_conditions", datasource.Row{"total_duplicate_groups": int64(0), "total_duplicate_records": int64(0)})

		res := newChecker(mock).DistributionAnomalies(context.Background())

		assert.Equal(t, checks.StatusWarning, res.Status)
		require.Len(t, res.SubResults, 4)
		assert.Contains(t, res.SubResults[1].Message, "under 18")
		assert.Contains(t, res.SubResults[1].Message, "18-30, 31-50, 51-70")
	})

	t.Run("empty distributions are notable but not anomalies", func(t *testing.T) {
		res := newChecker(datasource.NewMock()).DistributionAnomalies(context.Background())

		assert.Equal(t, checks.StatusPass, res.Status)
		assert.Zero(t, res.Metrics["anomaly_count"])
		require.Len(t, res.SubResults, 4)
		for _, sub := range res.SubResults {
			assert.Equal(t, checks.StatusWarning, sub.Status)
		}
	})
}

func ExampleStatistical_AgeOutliers() {
	mock := datasource.NewMock()

	c := NewChecker(mock, config.DefaultThresholds()).(*Statistical)
	res := c.AgeOutliers(context.Background())

	fmt.Println(res.Status, res.Message)
	// Output: PASS found 0 persons with implausible ages
}
