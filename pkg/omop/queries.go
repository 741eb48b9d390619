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

package omop

import (
	"fmt"
	"strings"
)

// TableRowCounts returns the row count per core table.
// Columns: table_name, row_count.
func TableRowCounts() string {
	parts := make([]string, 0, len(CoreTables))
	for _, t := range CoreTables {
		parts = append(parts, fmt.Sprintf("SELECT '%s' AS table_name, COUNT(*) AS row_count FROM %s", t, t))
	}
	return strings.Join(parts, "\nUNION ALL\n") + "\nORDER BY row_count DESC"
}

// CompletenessCheck computes the percentage of rows with a null in any
// of the given fields. Columns: table_name, total_records, null_records,
// null_percentage.
func CompletenessCheck(table string, fields []string) string {
	conditions := make([]string, 0, len(fields))
	for _, f := range fields {
		conditions = append(conditions, f+" IS NULL")
	}
	anyNull := strings.Join(conditions, " OR ")

	return fmt.Sprintf(`SELECT
	'%[1]s' AS table_name,
	COUNT(*) AS total_records,
	SUM(CASE WHEN %[2]s THEN 1 ELSE 0 END) AS null_records,
	ROUND((SUM(CASE WHEN %[2]s THEN 1 ELSE 0 END) * 100.0) / COUNT(*), 2) AS null_percentage
FROM %[1]s`, table, anyNull)
}

// CriticalFieldNulls counts nulls in a single must-not-be-null column.
// Columns: null_count.
func CriticalFieldNulls(f CriticalField) string {
	return fmt.Sprintf("SELECT COUNT(*) AS null_count FROM %s WHERE %s IS NULL", f.Table, f.Column)
}

// PersonDemographicsQuality inspects the person table for missing or
// implausible demographics in one pass.
func PersonDemographicsQuality() string {
	return `SELECT
	COUNT(*) AS total_persons,
	SUM(CASE WHEN gender_concept_id IS NULL THEN 1 ELSE 0 END) AS missing_gender,
	SUM(CASE WHEN year_of_birth IS NULL THEN 1 ELSE 0 END) AS missing_birth_year,
	SUM(CASE WHEN race_concept_id IS NULL THEN 1 ELSE 0 END) AS missing_race,
	SUM(CASE WHEN ethnicity_concept_id IS NULL THEN 1 ELSE 0 END) AS missing_ethnicity,
	SUM(CASE WHEN year_of_birth < 1900 THEN 1 ELSE 0 END) AS invalid_birth_year_low,
	SUM(CASE WHEN year_of_birth > EXTRACT(YEAR FROM CURRENT_DATE) THEN 1 ELSE 0 END) AS invalid_birth_year_high,
	SUM(CASE WHEN (EXTRACT(YEAR FROM CURRENT_DATE) - year_of_birth) > 120 THEN 1 ELSE 0 END) AS unrealistic_age,
	ROUND((COUNT(*) - SUM(CASE WHEN gender_concept_id IS NULL OR year_of_birth IS NULL THEN 1 ELSE 0 END)) * 100.0 / COUNT(*), 2) AS completeness_score
FROM person`
}

// DomainCompleteness computes the share of records missing the source
// value or the type concept within one clinical domain table.
// Columns: total_records, missing_source_value, missing_type_concept.
func DomainCompleteness(d Domain) string {
	typeConcept := strings.TrimSuffix(d.ConceptField, "_concept_id") + "_type_concept_id"
	return fmt.Sprintf(`SELECT
	COUNT(*) AS total_records,
	SUM(CASE WHEN %[2]s IS NULL OR %[2]s = '' THEN 1 ELSE 0 END) AS missing_source_value,
	SUM(CASE WHEN %[3]s IS NULL THEN 1 ELSE 0 END) AS missing_type_concept
FROM %[1]s`, d.Table, d.SourceField, typeConcept)
}

// FutureDates counts rows dated after the evaluation time across the
// clinical tables. Columns: table_name, date_field, future_count.
func FutureDates() string {
	dated := []struct{ table, field string }{
		{"condition_occurrence", "condition_start_date"},
		{"drug_exposure", "drug_exposure_start_date"},
		{"procedure_occurrence", "procedure_date"},
		{"measurement", "measurement_date"},
		{"visit_occurrence", "visit_start_date"},
	}

	parts := make([]string, 0, len(dated))
	for _, d := range dated {
		parts = append(parts, fmt.Sprintf(
			"SELECT '%[1]s' AS table_name, '%[2]s' AS date_field, COUNT(*) AS future_count FROM %[1]s WHERE %[2]s > CURRENT_DATE",
			d.table, d.field))
	}
	return strings.Join(parts, "\nUNION ALL\n") + "\nORDER BY future_count DESC"
}

// DeathsBeforeBirth counts persons whose death date precedes their
// (calculated) birth date. Columns: inconsistent_count.
func DeathsBeforeBirth() string {
	return `SELECT COUNT(*) AS inconsistent_count
FROM person p
JOIN death d ON p.person_id = d.person_id
WHERE p.year_of_birth IS NOT NULL
AND d.death_date IS NOT NULL
AND d.death_date <
	CASE
		WHEN p.day_of_birth IS NOT NULL AND p.month_of_birth IS NOT NULL
		THEN MAKE_DATE(p.year_of_birth, p.month_of_birth, p.day_of_birth)
		WHEN p.month_of_birth IS NOT NULL
		THEN MAKE_DATE(p.year_of_birth, p.month_of_birth, 1)
		ELSE MAKE_DATE(p.year_of_birth, 1, 1)
	END`
}

// VeryOldDeaths counts deaths at an implausible age above 120 years.
// Columns: very_old_deaths.
func VeryOldDeaths() string {
	return `SELECT COUNT(*) AS very_old_deaths
FROM person p
JOIN death d ON p.person_id = d.person_id
WHERE p.year_of_birth IS NOT NULL
AND d.death_date IS NOT NULL
AND (EXTRACT(YEAR FROM d.death_date) - p.year_of_birth) > 120`
}

// EventsAfterDeath counts clinical events dated after the subject's
// death. Columns: event_type, events_after_death.
func EventsAfterDeath() string {
	events := []struct{ table, field string }{
		{"condition_occurrence", "condition_start_date"},
		{"drug_exposure", "drug_exposure_start_date"},
		{"procedure_occurrence", "procedure_date"},
		{"measurement", "measurement_date"},
	}

	parts := make([]string, 0, len(events))
	for _, e := range events {
		parts = append(parts, fmt.Sprintf(
			"SELECT '%[1]s' AS event_type, COUNT(*) AS events_after_death FROM %[1]s t JOIN death d ON t.person_id = d.person_id WHERE t.%[2]s > d.death_date",
			e.table, e.field))
	}
	return strings.Join(parts, "\nUNION ALL\n") + "\nORDER BY events_after_death DESC"
}

// VisitDateConsistency aggregates start/end date issues over all
// visits. Columns: total_visits, end_before_start, very_long_visits,
// negative_duration, avg_duration.
func VisitDateConsistency() string {
	return `SELECT
	COUNT(*) AS total_visits,
	SUM(CASE WHEN visit_end_date < visit_start_date THEN 1 ELSE 0 END) AS end_before_start,
	SUM(CASE WHEN visit_end_date - visit_start_date > 365 THEN 1 ELSE 0 END) AS very_long_visits,
	SUM(CASE WHEN visit_end_date - visit_start_date < 0 THEN 1 ELSE 0 END) AS negative_duration,
	AVG(CASE WHEN visit_end_date IS NOT NULL THEN visit_end_date - visit_start_date ELSE NULL END) AS avg_duration
FROM visit_occurrence
WHERE visit_start_date IS NOT NULL`
}

// EventsBeforeBirth counts clinical events dated before the subject's
// calculated birth date. Columns: issue_type, issue_count.
func EventsBeforeBirth() string {
	return `WITH birth_dates AS (
	SELECT
		person_id,
		CASE
			WHEN day_of_birth IS NOT NULL AND month_of_birth IS NOT NULL
			THEN MAKE_DATE(year_of_birth, month_of_birth, day_of_birth)
			WHEN month_of_birth IS NOT NULL
			THEN MAKE_DATE(year_of_birth, month_of_birth, 1)
			ELSE MAKE_DATE(year_of_birth, 1, 1)
		END AS birth_date
	FROM person
	WHERE year_of_birth IS NOT NULL
)
SELECT 'Conditions before birth' AS issue_type, COUNT(*) AS issue_count
FROM condition_occurrence co
JOIN birth_dates bd ON co.person_id = bd.person_id
WHERE co.condition_start_date < bd.birth_date
UNION ALL
SELECT 'Drugs before birth' AS issue_type, COUNT(*) AS issue_count
FROM drug_exposure de
JOIN birth_dates bd ON de.person_id = bd.person_id
WHERE de.drug_exposure_start_date < bd.birth_date
UNION ALL
SELECT 'Visits before birth' AS issue_type, COUNT(*) AS issue_count
FROM visit_occurrence vo
JOIN birth_dates bd ON vo.person_id = bd.person_id
WHERE vo.visit_start_date < bd.birth_date`
}

// UnmappedConcepts computes the share of records mapped to the
// sentinel concept id 0 within one domain. Columns: total_records,
// unmapped_count, unmapped_percentage.
func UnmappedConcepts(d Domain) string {
	return fmt.Sprintf(`SELECT
	COUNT(*) AS total_records,
	SUM(CASE WHEN %[2]s = 0 THEN 1 ELSE 0 END) AS unmapped_count,
	ROUND((SUM(CASE WHEN %[2]s = 0 THEN 1 ELSE 0 END) * 100.0) / COUNT(*), 2) AS unmapped_percentage
FROM %[1]s
WHERE %[2]s IS NOT NULL`, d.Table, d.ConceptField)
}

// StandardConceptUsage breaks condition concept usage down by the
// standard_concept flag. Columns: standard_concept, usage_count,
// percentage.
func StandardConceptUsage() string {
	return `SELECT
	c.standard_concept,
	COUNT(*) AS usage_count,
	ROUND((COUNT(*) * 100.0) / SUM(COUNT(*)) OVER(), 2) AS percentage
FROM condition_occurrence co
JOIN concept c ON co.condition_concept_id = c.concept_id
WHERE c.concept_id != 0
GROUP BY c.standard_concept
ORDER BY usage_count DESC`
}

// VocabularyCoverage lists the vocabularies in use. Columns:
// vocabulary_id, vocabulary_name, concept_count, usage_count.
func VocabularyCoverage() string {
	return `SELECT
	v.vocabulary_id,
	v.vocabulary_name,
	COUNT(DISTINCT c.concept_id) AS concept_count,
	COUNT(DISTINCT co.condition_occurrence_id) AS usage_count
FROM vocabulary v
LEFT JOIN concept c ON v.vocabulary_id = c.vocabulary_id
LEFT JOIN condition_occurrence co ON c.concept_id = co.condition_concept_id
WHERE c.concept_id != 0
GROUP BY v.vocabulary_id, v.vocabulary_name
HAVING COUNT(DISTINCT c.concept_id) > 0
ORDER BY usage_count DESC
LIMIT 20`
}

// DomainIntegrity counts records whose concept belongs to a different
// domain than the table they appear in. Columns: violation_count.
func DomainIntegrity(d Domain) string {
	return fmt.Sprintf(`SELECT COUNT(*) AS violation_count
FROM %[1]s t
JOIN concept c ON t.%[2]s = c.concept_id
WHERE c.domain_id != '%[3]s'
AND c.concept_id != 0`, d.Table, d.ConceptField, d.Name)
}

// ForeignKeyViolations counts child rows referencing a missing parent.
// Columns: violation_count.
func ForeignKeyViolations(r Relationship) string {
	return fmt.Sprintf(`SELECT COUNT(*) AS violation_count
FROM %[1]s c
LEFT JOIN %[3]s p ON c.%[2]s = p.%[4]s
WHERE c.%[2]s IS NOT NULL
AND p.%[4]s IS NULL`, r.ChildTable, r.ChildKey, r.ParentTable, r.ParentKey)
}

// OrphanCount counts child rows whose referenced parent does not
// exist. Columns: orphan_count.
func OrphanCount(r Relationship) string {
	return fmt.Sprintf(`SELECT COUNT(*) AS orphan_count
FROM %[1]s c
WHERE c.%[2]s IS NOT NULL
AND NOT EXISTS (
	SELECT 1 FROM %[3]s p WHERE p.%[4]s = c.%[2]s
)`, r.ChildTable, r.ChildKey, r.ParentTable, r.ParentKey)
}

// PersonIDConsistency compares the person ids referenced by clinical
// tables against the person table. Columns: persons_in_person_table,
// persons_in_clinical_tables, clinical_persons_missing_from_person_table.
func PersonIDConsistency() string {
	return `WITH person_ids AS (
	SELECT person_id FROM person
),
all_clinical_persons AS (
	SELECT DISTINCT person_id FROM condition_occurrence
	UNION
	SELECT DISTINCT person_id FROM drug_exposure
	UNION
	SELECT DISTINCT person_id FROM procedure_occurrence
	UNION
	SELECT DISTINCT person_id FROM measurement
	UNION
	SELECT DISTINCT person_id FROM observation
	UNION
	SELECT DISTINCT person_id FROM visit_occurrence
)
SELECT
	(SELECT COUNT(DISTINCT person_id) FROM person_ids) AS persons_in_person_table,
	(SELECT COUNT(DISTINCT person_id) FROM all_clinical_persons) AS persons_in_clinical_tables,
	(SELECT COUNT(DISTINCT acp.person_id)
	 FROM all_clinical_persons acp
	 LEFT JOIN person_ids pi ON acp.person_id = pi.person_id
	 WHERE pi.person_id IS NULL) AS clinical_persons_missing_from_person_table`
}

// VisitRelationships aggregates structural issues on the visit table.
// Columns: visits_without_ids, visits_without_person,
// visits_without_start_date, visits_end_before_start,
// unique_persons_with_visits, total_visits.
func VisitRelationships() string {
	return `SELECT
	(SELECT COUNT(*) FROM visit_occurrence WHERE visit_occurrence_id IS NULL) AS visits_without_ids,
	(SELECT COUNT(*) FROM visit_occurrence WHERE person_id IS NULL) AS visits_without_person,
	(SELECT COUNT(*) FROM visit_occurrence WHERE visit_start_date IS NULL) AS visits_without_start_date,
	(SELECT COUNT(*) FROM visit_occurrence WHERE visit_end_date < visit_start_date) AS visits_end_before_start,
	(SELECT COUNT(DISTINCT person_id) FROM visit_occurrence) AS unique_persons_with_visits,
	(SELECT COUNT(*) FROM visit_occurrence) AS total_visits`
}

// MissingConcepts counts records referencing a concept id that does
// not exist in the concept table. The sentinel concept id 0 is
// excluded; unmapped records are graded separately. Columns:
// missing_concepts.
func MissingConcepts(d Domain) string {
	return fmt.Sprintf(`SELECT COUNT(*) AS missing_concepts
FROM %[1]s t
WHERE t.%[2]s != 0
AND NOT EXISTS (
	SELECT 1 FROM concept c WHERE c.concept_id = t.%[2]s
)`, d.Table, d.ConceptField)
}

// AgeOutliers lists persons with implausible birth years or ages.
// Columns: person_id, year_of_birth, current_age.
func AgeOutliers() string {
	return `SELECT
	person_id,
	year_of_birth,
	EXTRACT(YEAR FROM CURRENT_DATE) - year_of_birth AS current_age
FROM person
WHERE year_of_birth IS NOT NULL
AND (
	year_of_birth < 1900
	OR year_of_birth > EXTRACT(YEAR FROM CURRENT_DATE)
	OR (EXTRACT(YEAR FROM CURRENT_DATE) - year_of_birth) > 120
)`
}

// DrugQuantityOutliers lists drug exposures with implausible quantity
// or days supply. Columns: drug_exposure_id, person_id, quantity,
// days_supply.
func DrugQuantityOutliers() string {
	return `SELECT
	drug_exposure_id,
	person_id,
	quantity,
	days_supply
FROM drug_exposure
WHERE quantity IS NOT NULL
AND (
	quantity < 0
	OR quantity > 10000
	OR (days_supply IS NOT NULL AND days_supply > 365)
	OR (days_supply IS NOT NULL AND days_supply < 0)
)
ORDER BY quantity DESC
LIMIT 100`
}

// MeasurementStats aggregates per-vital-sign summary statistics. The
// outlier classification against plausible ranges happens in the
// checker. Columns: measurement_concept_id, concept_name,
// measurement_count, avg_value, std_value, min_value, max_value.
func MeasurementStats() string {
	ids := make([]string, 0, len(VitalSignConceptIDs))
	for _, id := range VitalSignConceptIDs {
		ids = append(ids, fmt.Sprint(id))
	}

	return fmt.Sprintf(`SELECT
	m.measurement_concept_id,
	c.concept_name,
	COUNT(*) AS measurement_count,
	ROUND(AVG(m.value_as_number), 2) AS avg_value,
	ROUND(STDDEV(m.value_as_number), 2) AS std_value,
	MIN(m.value_as_number) AS min_value,
	MAX(m.value_as_number) AS max_value
FROM measurement m
JOIN concept c ON m.measurement_concept_id = c.concept_id
WHERE m.value_as_number IS NOT NULL
AND m.measurement_concept_id IN (%s)
GROUP BY m.measurement_concept_id, c.concept_name
HAVING COUNT(*) > 10`, strings.Join(ids, ", "))
}

// VisitDurationOutliers lists visits with negative or implausibly long
// durations. Columns: visit_occurrence_id, person_id,
// visit_start_date, visit_end_date, duration_days.
func VisitDurationOutliers() string {
	return `SELECT
	visit_occurrence_id,
	person_id,
	visit_start_date,
	visit_end_date,
	visit_end_date - visit_start_date AS duration_days
FROM visit_occurrence
WHERE visit_start_date IS NOT NULL
AND visit_end_date IS NOT NULL
AND (
	visit_end_date - visit_start_date < 0
	OR visit_end_date - visit_start_date > 365
)
ORDER BY duration_days DESC
LIMIT 100`
}

// GenderDistribution aggregates the person table per gender concept.
// Columns: gender, count, percentage.
func GenderDistribution() string {
	return `SELECT
	c.concept_name AS gender,
	COUNT(*) AS count,
	ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER(), 2) AS percentage
FROM person p
JOIN concept c ON p.gender_concept_id = c.concept_id
GROUP BY c.concept_name
ORDER BY count DESC`
}

// AgeDistribution buckets the person table into age groups. Columns:
// age_group, count, percentage.
func AgeDistribution() string {
	const buckets = `CASE
		WHEN (EXTRACT(YEAR FROM CURRENT_DATE) - year_of_birth) < 18 THEN 'Under 18'
		WHEN (EXTRACT(YEAR FROM CURRENT_DATE) - year_of_birth) BETWEEN 18 AND 30 THEN '18-30'
		WHEN (EXTRACT(YEAR FROM CURRENT_DATE) - year_of_birth) BETWEEN 31 AND 50 THEN '31-50'
		WHEN (EXTRACT(YEAR FROM CURRENT_DATE) - year_of_birth) BETWEEN 51 AND 70 THEN '51-70'
		WHEN (EXTRACT(YEAR FROM CURRENT_DATE) - year_of_birth) > 70 THEN 'Over 70'
		ELSE 'Unknown'
	END`

	return fmt.Sprintf(`SELECT
	%[1]s AS age_group,
	COUNT(*) AS count,
	ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER(), 2) AS percentage
FROM person
WHERE year_of_birth IS NOT NULL
GROUP BY %[1]s
ORDER BY count DESC`, buckets)
}

// DataDensityByYear aggregates condition volume per year. Columns:
// year, unique_patients, total_conditions, conditions_per_patient.
func DataDensityByYear() string {
	return `SELECT
	EXTRACT(YEAR FROM condition_start_date) AS year,
	COUNT(DISTINCT person_id) AS unique_patients,
	COUNT(*) AS total_conditions,
	ROUND(COUNT(*) * 1.0 / COUNT(DISTINCT person_id), 2) AS conditions_per_patient
FROM condition_occurrence
WHERE condition_start_date IS NOT NULL
AND EXTRACT(YEAR FROM condition_start_date) >= 2010
AND EXTRACT(YEAR FROM condition_start_date) <= EXTRACT(YEAR FROM CURRENT_DATE)
GROUP BY EXTRACT(YEAR FROM condition_start_date)
ORDER BY year`
}

// DuplicateConditions counts condition records duplicated on person,
// concept and start date. Columns: total_duplicate_groups,
// total_duplicate_records.
func DuplicateConditions() string {
	return `WITH duplicate_conditions AS (
	SELECT
		person_id,
		condition_concept_id,
		condition_start_date,
		COUNT(*) AS duplicate_count
	FROM condition_occurrence
	GROUP BY person_id, condition_concept_id, condition_start_date
	HAVING COUNT(*) > 1
)
SELECT
	COUNT(*) AS total_duplicate_groups,
	COALESCE(SUM(duplicate_count), 0) AS total_duplicate_records
FROM duplicate_conditions`
}
