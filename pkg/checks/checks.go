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

// Package checks holds the core model of the quality check engine: the
// status lattice, the check result, the summary rollup and the checker
// contract every category checker implements.
package checks

import (
	"context"
	"fmt"

	"github.com/caas-team/plover/pkg/datasource"
	"github.com/getkin/kin-openapi/openapi3"
)

// Status is the closed outcome space of a quality check.
type Status string

const (
	// StatusPass means the check was evaluated and is fully compliant.
	StatusPass Status = "PASS"
	// StatusWarning means the check was evaluated and is within a
	// tolerated but notable range.
	StatusWarning Status = "WARNING"
	// StatusFail means the check was evaluated and violated a hard rule.
	StatusFail Status = "FAIL"
	// StatusError means the check could not be evaluated.
	StatusError Status = "ERROR"
)

// Result is the immutable outcome of one named check.
type Result struct {
	Status  Status             `json:"status"`
	Message string             `json:"message"`
	Data    []datasource.Row   `json:"data,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	// SubResults carries per-row verdicts for checks that evaluate a
	// set of units (tables, relationships, fields). Each sub result
	// counts as an additional unit in the summary rollup.
	SubResults []Result `json:"sub_results,omitempty"`
	// Error is only set when Status is StatusError.
	Error string `json:"error,omitempty"`
}

// ErrorResult builds a Result for a check that could not be evaluated.
func ErrorResult(message string, err error) Result {
	return Result{
		Status:  StatusError,
		Message: message,
		Error:   err.Error(),
	}
}

// Checker is a category scoped collection of named quality checks.
//
// A checker is constructed once per evaluation session, bound to one
// data source it does not own. Run replaces the result map wholesale
// on every completed run; a checker carries no cross-session state.
type Checker interface {
	// Name returns the category name of the checker.
	Name() string
	// Checks returns the fixed set of check names the checker owns.
	Checks() []string
	// Run executes every named check of the category and returns the
	// collected results. Individual check failures never surface as an
	// error; the returned error is non-nil only when the run was
	// canceled before completion, in which case the previous results
	// are left untouched.
	Run(ctx context.Context) (map[string]Result, error)
	// Results returns the results of the last completed run.
	Results() map[string]Result
	// Summary folds the results of the last completed run.
	Summary() Summary
	// Schema returns an openapi3.SchemaRef describing the result
	// payload served for this checker.
	Schema() (*openapi3.SchemaRef, error)
}

// Summary is the rollup of check results into counts per status.
type Summary struct {
	Total   int `json:"total_checks"`
	Passed  int `json:"passed_checks"`
	Warning int `json:"warning_checks"`
	Failed  int `json:"failed_checks"`
	Errored int `json:"errored_checks"`
}

// Summarize folds one or more result maps into a Summary. Sub results
// are counted recursively as additional units on top of their parent.
// Empty input yields all zero counts.
func Summarize(results ...map[string]Result) Summary {
	var s Summary
	for _, m := range results {
		for _, r := range m {
			s.add(r)
		}
	}
	return s
}

func (s *Summary) add(r Result) {
	s.Total++
	switch r.Status {
	case StatusPass:
		s.Passed++
	case StatusWarning:
		s.Warning++
	case StatusFail:
		s.Failed++
	case StatusError:
		s.Errored++
	}
	for _, sub := range r.SubResults {
		s.add(sub)
	}
}

// ClassifyPercent grades a bad-data percentage against a warning and a
// fail cutoff. The classification is monotone: a higher percentage
// never yields a better status.
func ClassifyPercent(percent, warning, fail float64) Status {
	switch {
	case percent < warning:
		return StatusPass
	case percent < fail:
		return StatusWarning
	default:
		return StatusFail
	}
}

// ClassifyCount grades a violation count with a tolerated band: zero
// passes, counts below the limit warn, everything else fails.
func ClassifyCount(count, warnLimit int64) Status {
	switch {
	case count == 0:
		return StatusPass
	case count < warnLimit:
		return StatusWarning
	default:
		return StatusFail
	}
}

// ClassifyZeroTolerance grades a violation count with no tolerated
// band. There is deliberately no warning tier.
func ClassifyZeroTolerance(count int64) Status {
	if count == 0 {
		return StatusPass
	}
	return StatusFail
}

// ClassifyFloor grades a goodness score against a pass and a warning
// floor: at or above the pass floor is a pass, at or above the warning
// floor is a warning, below is a failure.
func ClassifyFloor(score, passFloor, warnFloor float64) Status {
	switch {
	case score >= passFloor:
		return StatusPass
	case score >= warnFloor:
		return StatusWarning
	default:
		return StatusFail
	}
}

// WorstOf combines per-unit statuses into the status of the owning
// check: any failure dominates, then any error, then any warning.
func WorstOf(subs []Result) Status {
	status := StatusPass
	for _, sub := range subs {
		switch sub.Status {
		case StatusFail:
			return StatusFail
		case StatusError:
			status = StatusError
		case StatusWarning:
			if status == StatusPass {
				status = StatusWarning
			}
		}
	}
	return status
}

// Validate reports whether the result honors the status/error
// invariant: an error detail forces StatusError, a pass forbids it.
func (r Result) Validate() error {
	if r.Error != "" && r.Status != StatusError {
		return fmt.Errorf("result with error detail must have status %s, got %s", StatusError, r.Status)
	}
	if r.Status == StatusPass && r.Error != "" {
		return fmt.Errorf("passing result must not carry an error detail")
	}
	return nil
}
