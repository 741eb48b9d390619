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
	"context"
	"fmt"
	"sync"

	"github.com/caas-team/plover/internal/logger"
	"github.com/caas-team/plover/pkg/datasource"
)

// ConnectionCheckName is the synthetic result key reported when the
// data source is unreachable and no individual check was attempted.
const ConnectionCheckName = "connection"

// Check is one named, independently executable rule evaluation.
// Tables lists the tables the check queries; the runner guards their
// existence before Run is invoked, so no check can forget the guard.
type Check struct {
	Name   string
	Tables []string
	Run    func(ctx context.Context) Result
}

// Base provides the shared lifecycle for category checkers: connection
// validation, the missing-table guard, per-check error isolation and
// the summary rollup. It is meant to be embedded.
type Base struct {
	name       string
	DataSource datasource.DataSource

	mu      sync.Mutex
	results map[string]Result
}

// NewBase creates a new Base bound to the given data source.
func NewBase(name string, ds datasource.DataSource) Base {
	return Base{name: name, DataSource: ds}
}

// Name returns the category name of the checker.
func (b *Base) Name() string {
	return b.name
}

// ValidateConnection probes the data source. A false return means the
// whole run for this checker must be aborted.
func (b *Base) ValidateConnection(ctx context.Context) bool {
	return b.DataSource.Ping(ctx)
}

// TableExists reports whether the named table exists. Lookup errors
// are logged and treated as absent, so a flaky catalog never turns
// into a false query attempt.
func (b *Base) TableExists(ctx context.Context, name string) bool {
	exists, err := b.DataSource.TableExists(ctx, name)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to check if table exists", "table", name, "error", err)
		return false
	}
	return exists
}

// RunChecks executes the given checks sequentially and replaces the
// stored results on completion.
//
// If the data source is unreachable the run short-circuits with a
// single synthetic ERROR result. Each check runs inside its own error
// boundary: a panic or error in one check becomes that check's ERROR
// result and never stops its siblings. When the context is canceled
// before all checks were launched, the previous results are left
// untouched and the context error is returned.
func (b *Base) RunChecks(ctx context.Context, cks []Check) (map[string]Result, error) {
	log := logger.FromContext(ctx).With("checker", b.name)

	if !b.ValidateConnection(ctx) {
		log.Error("Data source is not reachable, aborting run")
		results := map[string]Result{
			ConnectionCheckName: {
				Status:  StatusError,
				Message: fmt.Sprintf("data source validation failed for checker %q", b.name),
				Error:   "data source is not reachable",
			},
		}
		b.setResults(results)
		return results, nil
	}

	results := make(map[string]Result, len(cks))
	for _, c := range cks {
		if err := ctx.Err(); err != nil {
			log.Warn("Run canceled, keeping previous results", "error", err)
			return nil, fmt.Errorf("run of checker %q canceled: %w", b.name, err)
		}

		log.Debug("Starting check", "check", c.Name)
		res := b.runCheck(ctx, c)
		log.Info("Completed check", "check", c.Name, "status", res.Status)
		results[c.Name] = res
	}

	b.setResults(results)
	return results, nil
}

// runCheck applies the missing-table guard and the error boundary
// around a single check.
func (b *Base) runCheck(ctx context.Context, c Check) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("Check panicked", "checker", b.name, "check", c.Name, "panic", r)
			res = Result{
				Status:  StatusError,
				Message: fmt.Sprintf("check %q panicked", c.Name),
				Error:   fmt.Sprint(r),
			}
		}
	}()

	for _, table := range c.Tables {
		if !b.TableExists(ctx, table) {
			return Result{
				Status:  StatusWarning,
				Message: fmt.Sprintf("table %q does not exist, check %q skipped", table, c.Name),
			}
		}
	}

	res = c.Run(ctx)
	if err := res.Validate(); err != nil {
		logger.FromContext(ctx).Error("Check produced an invalid result", "checker", b.name, "check", c.Name, "error", err)
		return Result{
			Status:  StatusError,
			Message: fmt.Sprintf("check %q produced an invalid result", c.Name),
			Error:   err.Error(),
		}
	}
	return res
}

// Count runs a query expected to return a single row and reads the
// named column as an integer. A query returning no rows counts as zero.
func (b *Base) Count(ctx context.Context, query, column string) (int64, error) {
	rows, err := b.DataSource.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int(column), nil
}

func (b *Base) setResults(results map[string]Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = results
}

// Results returns a copy of the results of the last completed run.
func (b *Base) Results() map[string]Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]Result, len(b.results))
	for k, v := range b.results {
		out[k] = v
	}
	return out
}

// Summary folds the results of the last completed run. An empty
// result map yields all zero counts.
func (b *Base) Summary() Summary {
	return Summarize(b.Results())
}
