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

// Package omop describes the subset of the OMOP common data model the
// quality checks operate on, and builds the SQL they issue.
package omop

// CoreTables are the clinical tables every dashboard run inspects.
var CoreTables = []string{
	"person",
	"condition_occurrence",
	"drug_exposure",
	"procedure_occurrence",
	"measurement",
	"observation",
	"visit_occurrence",
	"death",
}

// KeyFields maps each core table to the fields whose null percentage
// drives the table completeness check.
var KeyFields = map[string][]string{
	"person":               {"person_id", "gender_concept_id", "year_of_birth"},
	"condition_occurrence": {"person_id", "condition_concept_id", "condition_start_date"},
	"drug_exposure":        {"person_id", "drug_concept_id", "drug_exposure_start_date"},
	"procedure_occurrence": {"person_id", "procedure_concept_id", "procedure_date"},
	"measurement":          {"person_id", "measurement_concept_id", "measurement_date"},
	"visit_occurrence":     {"person_id", "visit_concept_id", "visit_start_date"},
	"observation":          {"person_id", "observation_concept_id", "observation_date"},
	"death":                {"person_id", "death_date"},
}

// CriticalField is a must-never-be-null column. Any null is an
// immediate failure, the threshold is fixed at zero.
type CriticalField struct {
	Name   string
	Table  string
	Column string
}

// CriticalFields enumerates the columns the critical field check guards.
var CriticalFields = []CriticalField{
	{Name: "Person IDs in condition_occurrence", Table: "condition_occurrence", Column: "person_id"},
	{Name: "Concept IDs in condition_occurrence", Table: "condition_occurrence", Column: "condition_concept_id"},
	{Name: "Start dates in drug_exposure", Table: "drug_exposure", Column: "drug_exposure_start_date"},
	{Name: "Person IDs in visit_occurrence", Table: "visit_occurrence", Column: "person_id"},
	{Name: "Visit concept IDs in visit_occurrence", Table: "visit_occurrence", Column: "visit_concept_id"},
}

// Relationship declares a foreign key relationship between a child and
// a parent table.
type Relationship struct {
	Name        string
	ChildTable  string
	ChildKey    string
	ParentTable string
	ParentKey   string
}

// Relationships is the fixed set of foreign key relationships the
// referential integrity checker validates.
var Relationships = []Relationship{
	{Name: "Condition to Person", ChildTable: "condition_occurrence", ChildKey: "person_id", ParentTable: "person", ParentKey: "person_id"},
	{Name: "Drug to Person", ChildTable: "drug_exposure", ChildKey: "person_id", ParentTable: "person", ParentKey: "person_id"},
	{Name: "Visit to Person", ChildTable: "visit_occurrence", ChildKey: "person_id", ParentTable: "person", ParentKey: "person_id"},
	{Name: "Condition to Visit", ChildTable: "condition_occurrence", ChildKey: "visit_occurrence_id", ParentTable: "visit_occurrence", ParentKey: "visit_occurrence_id"},
}

// OrphanChecks are the orphaned record relationships. They mirror the
// foreign key checks but tolerate small counts, an orphan is notable
// rather than fatal.
var OrphanChecks = []Relationship{
	{Name: "Conditions without visits", ChildTable: "condition_occurrence", ChildKey: "visit_occurrence_id", ParentTable: "visit_occurrence", ParentKey: "visit_occurrence_id"},
	{Name: "Drugs without visits", ChildTable: "drug_exposure", ChildKey: "visit_occurrence_id", ParentTable: "visit_occurrence", ParentKey: "visit_occurrence_id"},
	{Name: "Measurements without person", ChildTable: "measurement", ChildKey: "person_id", ParentTable: "person", ParentKey: "person_id"},
}

// Domain associates a clinical domain with its occurrence table and
// concept column.
type Domain struct {
	Name         string
	Table        string
	ConceptField string
	SourceField  string
}

// Domains are the clinical domains checked for unmapped concepts and
// domain integrity.
var Domains = []Domain{
	{Name: "Condition", Table: "condition_occurrence", ConceptField: "condition_concept_id", SourceField: "condition_source_value"},
	{Name: "Drug", Table: "drug_exposure", ConceptField: "drug_concept_id", SourceField: "drug_source_value"},
	{Name: "Procedure", Table: "procedure_occurrence", ConceptField: "procedure_concept_id", SourceField: "procedure_source_value"},
	{Name: "Measurement", Table: "measurement", ConceptField: "measurement_concept_id", SourceField: "measurement_source_value"},
}

// PlausibleRange is the physiologically plausible value range for a
// vital sign. Measurements outside this range are flagged as outliers.
type PlausibleRange struct {
	// Keyword is matched case-insensitively against the concept name.
	Keyword string
	Min     float64
	Max     float64
}

// PlausibleRanges holds hard-coded ranges per vital sign. These are
// clinical constants, not configuration.
var PlausibleRanges = []PlausibleRange{
	{Keyword: "heart rate", Min: 30, Max: 200},
	{Keyword: "temperature", Min: 32, Max: 45},
	{Keyword: "weight", Min: 0.5, Max: 500},
	{Keyword: "height", Min: 30, Max: 250},
	{Keyword: "bmi", Min: 10, Max: 80},
	{Keyword: "blood pressure", Min: 40, Max: 300},
}

// VitalSignConceptIDs are the measurement concepts inspected by the
// measurement outlier check.
var VitalSignConceptIDs = []int64{
	3027018, // Heart rate
	3012888, // Body temperature
	3004249, // Body weight
	3013762, // Body height
	3018586, // BMI
	3004327, // Systolic blood pressure
}
