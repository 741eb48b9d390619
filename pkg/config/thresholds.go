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

package config

// Thresholds holds the configurable classification cutoffs per check
// category. Loading starts from DefaultThresholds, so any cutoff
// absent from the configuration keeps its documented default.
//
// The temporal checks carry no thresholds: future dates, deaths before
// birth and events after death are zero tolerance.
type Thresholds struct {
	Completeness   CompletenessThresholds   `yaml:"completeness"`
	ConceptMapping ConceptMappingThresholds `yaml:"conceptMapping"`
	Referential    ReferentialThresholds    `yaml:"referential"`
	Statistical    StatisticalThresholds    `yaml:"statistical"`
}

// CompletenessThresholds are the cutoffs of the completeness checker.
type CompletenessThresholds struct {
	// TableWarning and TableFail bound the null percentage of a
	// table's key fields.
	// TODO: confirm the warning cutoff with the data stewards, 5 and
	// 10 are both in circulation.
	TableWarning float64 `yaml:"tableWarning"`
	TableFail    float64 `yaml:"tableFail"`
	// PersonPass and PersonWarn floor the person completeness score.
	PersonPass float64 `yaml:"personPass"`
	PersonWarn float64 `yaml:"personWarn"`
	// DomainPass and DomainWarn floor the per-domain completeness score.
	DomainPass float64 `yaml:"domainPass"`
	DomainWarn float64 `yaml:"domainWarn"`
}

// ConceptMappingThresholds are the cutoffs of the concept mapping checker.
type ConceptMappingThresholds struct {
	// UnmappedWarning and UnmappedFail bound the percentage of records
	// mapped to the sentinel concept id 0.
	UnmappedWarning float64 `yaml:"unmappedWarning"`
	UnmappedFail    float64 `yaml:"unmappedFail"`
	// StandardPass and StandardWarn floor the percentage of standard
	// concept usage.
	StandardPass float64 `yaml:"standardPass"`
	StandardWarn float64 `yaml:"standardWarn"`
	// MinVocabularies is the number of vocabularies expected in use.
	MinVocabularies int64 `yaml:"minVocabularies"`
}

// ReferentialThresholds are the cutoffs of the referential integrity
// checker. Foreign key violations are zero tolerance and carry no
// threshold.
type ReferentialThresholds struct {
	// OrphanWarning is the orphan count below which the result is a
	// warning instead of a failure.
	OrphanWarning int64 `yaml:"orphanWarning"`
	// VisitIssueWarning is the tolerated band for structural visit issues.
	VisitIssueWarning int64 `yaml:"visitIssueWarning"`
}

// StatisticalThresholds are the tolerated outlier counts of the
// statistical checker.
type StatisticalThresholds struct {
	AgeOutlierWarning    int64 `yaml:"ageOutlierWarning"`
	DrugOutlierWarning   int64 `yaml:"drugOutlierWarning"`
	VisitDurationWarning int64 `yaml:"visitDurationWarning"`
}

// DefaultThresholds returns the built-in default cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Completeness: CompletenessThresholds{
			TableWarning: 5,
			TableFail:    25,
			PersonPass:   95,
			PersonWarn:   85,
			DomainPass:   80,
			DomainWarn:   60,
		},
		ConceptMapping: ConceptMappingThresholds{
			UnmappedWarning: 5,
			UnmappedFail:    15,
			StandardPass:    80,
			StandardWarn:    60,
			MinVocabularies: 5,
		},
		Referential: ReferentialThresholds{
			OrphanWarning:     100,
			VisitIssueWarning: 10,
		},
		Statistical: StatisticalThresholds{
			AgeOutlierWarning:    10,
			DrugOutlierWarning:   50,
			VisitDurationWarning: 20,
		},
	}
}
