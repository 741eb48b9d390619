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

// Package statistical checks the clinical data for statistical
// outliers: implausible ages, drug quantities, vital sign values and
// visit durations.
package statistical

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
	"github.com/caas-team/plover/pkg/omop"
)

// CheckerName is the registered name of the statistical checker.
const CheckerName = "statistical"

const (
	CheckAgeOutliers           = "age_outliers"
	CheckDrugQuantityOutliers  = "drug_quantity_outliers"
	CheckMeasurementOutliers   = "measurement_outliers"
	CheckVisitDurationOutliers = "visit_duration_outliers"
	CheckDistributionAnomalies = "distribution_anomalies"
)

var _ checks.Checker = (*Statistical)(nil)

// Statistical implements the statistical outlier category checker.
type Statistical struct {
	checks.Base
	cfg config.StatisticalThresholds
}

// NewChecker creates a new statistical checker.
func NewChecker(ds datasource.DataSource, t config.Thresholds) checks.Checker {
	return &Statistical{
		Base: checks.NewBase(CheckerName, ds),
		cfg:  t.Statistical,
	}
}

// Checks returns the names of the checks this checker owns.
func (c *Statistical) Checks() []string {
	return []string{
		CheckAgeOutliers,
		CheckDrugQuantityOutliers,
		CheckMeasurementOutliers,
		CheckVisitDurationOutliers,
		CheckDistributionAnomalies,
	}
}

// Run executes all statistical checks.
func (c *Statistical) Run(ctx context.Context) (map[string]checks.Result, error) {
	return c.RunChecks(ctx, []checks.Check{
		{Name: CheckAgeOutliers, Tables: []string{"person"}, Run: c.AgeOutliers},
		{Name: CheckDrugQuantityOutliers, Tables: []string{"drug_exposure"}, Run: c.DrugQuantityOutliers},
		{Name: CheckMeasurementOutliers, Tables: []string{"measurement", "concept"}, Run: c.MeasurementOutliers},
		{Name: CheckVisitDurationOutliers, Tables: []string{"visit_occurrence"}, Run: c.VisitDurationOutliers},
		{Name: CheckDistributionAnomalies, Tables: []string{"person", "concept", "condition_occurrence"}, Run: c.DistributionAnomalies},
	})
}

// Schema provides the schema of the data that will be provided
// by the statistical checker.
func (c *Statistical) Schema() (*openapi3.SchemaRef, error) {
	return checks.SchemaForResults()
}

// AgeOutliers flags persons with implausible birth years or ages.
func (c *Statistical) AgeOutliers(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.AgeOutliers())
	if err != nil {
		return checks.ErrorResult("age outlier query failed", err)
	}

	count := int64(len(rows))
	return checks.Result{
		Status:  checks.ClassifyCount(count, c.cfg.AgeOutlierWarning),
		Message: fmt.Sprintf("found %d persons with implausible ages", count),
		Data:    rows,
		Metrics: map[string]float64{"outlier_count": float64(count)},
	}
}

// DrugQuantityOutliers flags drug exposures with implausible quantity
// or days supply values.
func (c *Statistical) DrugQuantityOutliers(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.DrugQuantityOutliers())
	if err != nil {
		return checks.ErrorResult("drug quantity outlier query failed", err)
	}

	count := int64(len(rows))
	return checks.Result{
		Status:  checks.ClassifyCount(count, c.cfg.DrugOutlierWarning),
		Message: fmt.Sprintf("found %d drug exposures with implausible quantities", count),
		Data:    rows,
		Metrics: map[string]float64{"outlier_count": float64(count)},
	}
}

// MeasurementOutliers compares per-vital-sign value ranges against the
// physiologically plausible ranges. Outliers are notable, never a hard
// failure.
func (c *Statistical) MeasurementOutliers(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.MeasurementStats())
	if err != nil {
		return checks.ErrorResult("measurement statistics query failed", err)
	}
	if len(rows) == 0 {
		return checks.Result{Status: checks.StatusWarning, Message: "no measurement data available"}
	}

	subs := make([]checks.Result, 0, len(rows))
	var outliers int64
	for _, row := range rows {
		name := row.String("concept_name")
		status := checks.StatusPass
		message := fmt.Sprintf("%s values are within the plausible range", name)

		if r, ok := plausibleRangeFor(name); ok {
			if row.Float("min_value") < r.Min || row.Float("max_value") > r.Max {
				status = checks.StatusWarning
				outliers++
				message = fmt.Sprintf("%s values outside the plausible range [%g, %g]", name, r.Min, r.Max)
			}
		}

		subs = append(subs, checks.Result{
			Status:  status,
			Message: message,
			Metrics: map[string]float64{
				"measurement_count": row.Float("measurement_count"),
				"min_value":         row.Float("min_value"),
				"max_value":         row.Float("max_value"),
			},
		})
	}

	return checks.Result{
		Status:     checks.WorstOf(subs),
		Message:    fmt.Sprintf("%d of %d vital signs show outlier values", outliers, len(rows)),
		Metrics:    map[string]float64{"outlier_count": float64(outliers)},
		SubResults: subs,
		Data:       rows,
	}
}

// VisitDurationOutliers flags visits with negative or implausibly long
// durations.
func (c *Statistical) VisitDurationOutliers(ctx context.Context) checks.Result {
	rows, err := c.DataSource.Query(ctx, omop.VisitDurationOutliers())
	if err != nil {
		return checks.ErrorResult("visit duration outlier query failed", err)
	}

	count := int64(len(rows))
	return checks.Result{
		Status:  checks.ClassifyCount(count, c.cfg.VisitDurationWarning),
		Message: fmt.Sprintf("found %d visits with implausible durations", count),
		Data:    rows,
		Metrics: map[string]float64{"outlier_count": float64(count)},
	}
}

// DistributionAnomalies inspects the gender balance, the age group
// spread, the yearly condition volume and duplicate condition records
// for unusual distributions. Up to two anomalies are a warning, more
// fail the check.
func (c *Statistical) DistributionAnomalies(ctx context.Context) checks.Result {
	subs := make([]checks.Result, 0, 4)
	var anomalies int64

	for _, dist := range []struct {
		query   string
		inspect func([]datasource.Row) (checks.Result, int64)
	}{
		{query: omop.GenderDistribution(), inspect: genderBalance},
		{query: omop.AgeDistribution(), inspect: ageGroupSpread},
		{query: omop.DataDensityByYear(), inspect: yearlyDensity},
		{query: omop.DuplicateConditions(), inspect: duplicateConditions},
	} {
		rows, err := c.DataSource.Query(ctx, dist.query)
		if err != nil {
			subs = append(subs, checks.ErrorResult("distribution query failed", err))
			continue
		}

		sub, found := dist.inspect(rows)
		anomalies += found
		subs = append(subs, sub)
	}

	return checks.Result{
		Status:     checks.ClassifyCount(anomalies, 3),
		Message:    fmt.Sprintf("found %d distribution anomalies", anomalies),
		Metrics:    map[string]float64{"anomaly_count": float64(anomalies)},
		SubResults: subs,
	}
}

// genderBalance flags a heavily skewed or severely underrepresented
// gender in the person table.
func genderBalance(rows []datasource.Row) (checks.Result, int64) {
	if len(rows) == 0 {
		return checks.Result{Status: checks.StatusWarning, Message: "no gender data available"}, 0
	}

	var male, female float64
	for _, row := range rows {
		name := strings.ToLower(row.String("gender"))
		switch {
		case strings.Contains(name, "female"):
			female += row.Float("percentage")
		case strings.Contains(name, "male"):
			male += row.Float("percentage")
		}
	}

	var found []string
	if diff := male - female; diff > 30 || diff < -30 {
		found = append(found, fmt.Sprintf("gender distribution heavily skewed: %.1f%% male, %.1f%% female", male, female))
	}
	if male < 10 || female < 10 {
		found = append(found, "one gender severely underrepresented")
	}

	return distributionResult("gender distribution is balanced", found, rows, map[string]float64{
		"male_percentage":   male,
		"female_percentage": female,
	}), int64(len(found))
}

// ageGroupSpread flags implausibly dominant or missing age groups.
func ageGroupSpread(rows []datasource.Row) (checks.Result, int64) {
	if len(rows) == 0 {
		return checks.Result{Status: checks.StatusWarning, Message: "no age data available"}, 0
	}

	var under18, over70 float64
	seen := map[string]bool{}
	for _, row := range rows {
		group := row.String("age_group")
		seen[group] = true
		switch group {
		case "Under 18":
			under18 += row.Float("percentage")
		case "Over 70":
			over70 += row.Float("percentage")
		}
	}

	var found []string
	if under18 > 50 {
		found = append(found, fmt.Sprintf("unusually high share of patients under 18: %.1f%%", under18))
	}
	if over70 > 60 {
		found = append(found, fmt.Sprintf("unusually high share of patients over 70: %.1f%%", over70))
	}
	var missing []string
	for _, group := range []string{"18-30", "31-50", "51-70"} {
		if !seen[group] {
			missing = append(missing, group)
		}
	}
	if len(missing) > 0 {
		found = append(found, fmt.Sprintf("missing age groups: %s", strings.Join(missing, ", ")))
	}

	return distributionResult("age distribution covers the expected groups", found, rows, map[string]float64{
		"under_18_percentage": under18,
		"over_70_percentage":  over70,
	}), int64(len(found))
}

// yearlyDensity flags sudden drops or spikes in the yearly condition
// volume. Rows are expected in ascending year order.
func yearlyDensity(rows []datasource.Row) (checks.Result, int64) {
	if len(rows) == 0 {
		return checks.Result{Status: checks.StatusWarning, Message: "no condition data available"}, 0
	}

	var found []string
	for i := 1; i < len(rows); i++ {
		previous := rows[i-1].Float("total_conditions")
		if previous <= 0 {
			continue
		}

		change := (rows[i].Float("total_conditions") - previous) / previous * 100
		year := rows[i].Int("year")
		if change < -50 {
			found = append(found, fmt.Sprintf("significant data drop in %d: %.1f%% decrease", year, -change))
		} else if change > 200 {
			found = append(found, fmt.Sprintf("unusual data spike in %d: %.1f%% increase", year, change))
		}
	}

	return distributionResult("yearly condition volume is stable", found, rows, nil), int64(len(found))
}

// duplicateConditions flags a high number of duplicated condition
// records.
func duplicateConditions(rows []datasource.Row) (checks.Result, int64) {
	if len(rows) == 0 {
		return checks.Result{Status: checks.StatusWarning, Message: "no duplicate data available"}, 0
	}

	duplicates := rows[0].Int("total_duplicate_records")
	var found []string
	if duplicates > 100 {
		found = append(found, fmt.Sprintf("high number of duplicate condition records: %d", duplicates))
	}

	return distributionResult("no notable duplicate condition records", found, rows, map[string]float64{
		"duplicate_records": float64(duplicates),
	}), int64(len(found))
}

// distributionResult folds the anomalies of one distribution into its
// sub result. Any anomaly makes the distribution notable, never a
// hard failure on its own.
func distributionResult(passMessage string, anomalies []string, rows []datasource.Row, metrics map[string]float64) checks.Result {
	res := checks.Result{
		Status:  checks.StatusPass,
		Message: passMessage,
		Data:    rows,
		Metrics: metrics,
	}
	if len(anomalies) > 0 {
		res.Status = checks.StatusWarning
		res.Message = strings.Join(anomalies, "; ")
	}
	return res
}

// plausibleRangeFor matches a concept name against the known vital
// sign ranges. Unknown vital signs are not graded.
func plausibleRangeFor(conceptName string) (omop.PlausibleRange, bool) {
	name := strings.ToLower(conceptName)
	for _, r := range omop.PlausibleRanges {
		if strings.Contains(name, r.Keyword) {
			return r, true
		}
	}
	return omop.PlausibleRange{}, false
}
