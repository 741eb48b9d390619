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

package checks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		results []map[string]Result
		want    Summary
	}{
		{
			name: "empty input yields zero counts",
			want: Summary{},
		},
		{
			name: "one status per bucket",
			results: []map[string]Result{{
				"a": {Status: StatusPass},
				"b": {Status: StatusFail},
				"c": {Status: StatusWarning},
			}},
			want: Summary{Total: 3, Passed: 1, Warning: 1, Failed: 1},
		},
		{
			name: "error and failure are counted apart",
			results: []map[string]Result{{
				"a": {Status: StatusError, Error: "boom"},
				"b": {Status: StatusFail},
			}},
			want: Summary{Total: 2, Failed: 1, Errored: 1},
		},
		{
			name: "sub results count as additional units",
			results: []map[string]Result{{
				"a": {
					Status: StatusWarning,
					SubResults: []Result{
						{Status: StatusPass},
						{Status: StatusFail},
					},
				},
			}},
			want: Summary{Total: 3, Passed: 1, Warning: 1, Failed: 1},
		},
		{
			name: "multiple maps are folded together",
			results: []map[string]Result{
				{"a": {Status: StatusPass}},
				{"b": {Status: StatusPass}},
			},
			want: Summary{Total: 2, Passed: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.results...))
		})
	}
}

func TestClassifyPercent(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		want    Status
	}{
		{"zero passes", 0, StatusPass},
		{"below warning passes", 4.99, StatusPass},
		{"warning cutoff warns", 5, StatusWarning},
		{"below fail warns", 24.99, StatusWarning},
		{"fail cutoff fails", 25, StatusFail},
		{"above fail fails", 100, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPercent(tt.percent, 5, 25))
		})
	}
}

func TestClassifyPercent_Monotone(t *testing.T) {
	rank := map[Status]int{StatusPass: 0, StatusWarning: 1, StatusFail: 2}

	last := StatusPass
	for pct := 0.0; pct <= 100; pct += 0.5 {
		got := ClassifyPercent(pct, 5, 25)
		assert.GreaterOrEqual(t, rank[got], rank[last], "status improved at %.1f%%", pct)
		last = got
	}
}

func TestClassifyCount(t *testing.T) {
	assert.Equal(t, StatusPass, ClassifyCount(0, 100))
	assert.Equal(t, StatusWarning, ClassifyCount(1, 100))
	assert.Equal(t, StatusWarning, ClassifyCount(99, 100))
	assert.Equal(t, StatusFail, ClassifyCount(100, 100))
}

func TestClassifyZeroTolerance(t *testing.T) {
	assert.Equal(t, StatusPass, ClassifyZeroTolerance(0))
	assert.Equal(t, StatusFail, ClassifyZeroTolerance(1))
}

func TestClassifyFloor(t *testing.T) {
	assert.Equal(t, StatusPass, ClassifyFloor(95, 95, 85))
	assert.Equal(t, StatusWarning, ClassifyFloor(94.99, 95, 85))
	assert.Equal(t, StatusWarning, ClassifyFloor(85, 95, 85))
	assert.Equal(t, StatusFail, ClassifyFloor(84.99, 95, 85))
}

func TestWorstOf(t *testing.T) {
	tests := []struct {
		name string
		subs []Result
		want Status
	}{
		{"empty passes", nil, StatusPass},
		{"all pass", []Result{{Status: StatusPass}, {Status: StatusPass}}, StatusPass},
		{"warning dominates pass", []Result{{Status: StatusPass}, {Status: StatusWarning}}, StatusWarning},
		{"error dominates warning", []Result{{Status: StatusWarning}, {Status: StatusError}}, StatusError},
		{"failure dominates everything", []Result{{Status: StatusError}, {Status: StatusFail}, {Status: StatusPass}}, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorstOf(tt.subs))
		})
	}
}

func TestResult_Validate(t *testing.T) {
	assert.NoError(t, Result{Status: StatusPass}.Validate())
	assert.NoError(t, Result{Status: StatusError, Error: "boom"}.Validate())
	assert.Error(t, Result{Status: StatusFail, Error: "boom"}.Validate())
	assert.Error(t, Result{Status: StatusPass, Error: "boom"}.Validate())
}

func TestErrorResult(t *testing.T) {
	res := ErrorResult("query failed", errors.New("connection reset"))
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "query failed", res.Message)
	assert.Equal(t, "connection reset", res.Error)
	assert.NoError(t, res.Validate())
}
