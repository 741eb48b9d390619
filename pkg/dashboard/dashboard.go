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

// Package dashboard wires the category checkers, the result store,
// the metrics and the HTTP result API into one runnable unit.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/caas-team/plover/internal/logger"
	"github.com/caas-team/plover/pkg/api"
	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
	"github.com/caas-team/plover/pkg/db"
	"github.com/caas-team/plover/pkg/factory"
	"github.com/caas-team/plover/pkg/metrics"
)

// Dashboard evaluates all registered check categories against one data
// source and serves the collected results.
type Dashboard struct {
	cfg      *config.Config
	db       db.DB
	metrics  metrics.Metrics
	api      api.API
	checkers map[factory.Category]checks.Checker
}

// New creates a new dashboard with one checker per registered category.
func New(cfg *config.Config, ds datasource.DataSource, thresholds config.Thresholds) *Dashboard {
	return &Dashboard{
		cfg:      cfg,
		db:       db.NewInMemory(),
		metrics:  metrics.NewMetrics(),
		api:      api.New(cfg.Api),
		checkers: factory.NewAll(ds, thresholds),
	}
}

// Run evaluates every category once and then serves the result API.
// Blocks until the context is done.
func (d *Dashboard) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()

	d.RunChecks(ctx)

	if err := d.api.RegisterRoutes(ctx, d.routes(ctx)...); err != nil {
		return err
	}
	return d.api.Run(ctx)
}

// Shutdown gracefully stops the result API.
func (d *Dashboard) Shutdown(ctx context.Context) error {
	return d.api.Shutdown(ctx)
}

// RunChecks evaluates all categories concurrently. Each checker owns
// its own result map, so the only shared state is the result store.
func (d *Dashboard) RunChecks(ctx context.Context) {
	log := logger.FromContext(ctx)

	var wg sync.WaitGroup
	for category, checker := range d.checkers {
		wg.Add(1)
		go func(category factory.Category, checker checks.Checker) {
			defer wg.Done()

			start := time.Now()
			results, err := checker.Run(ctx)
			if err != nil {
				log.Warn("Checker run did not complete", "category", category, "error", err)
				return
			}

			d.metrics.RecordResults(string(category), results)
			d.metrics.RecordRunDuration(string(category), time.Since(start).Seconds())
			d.db.Save(db.CategoryResult{
				Category:   string(category),
				Results:    results,
				Summary:    checker.Summary(),
				FinishedAt: time.Now(),
			})
			log.Info("Checker run completed", "category", category, "duration", time.Since(start))
		}(category, checker)
	}
	wg.Wait()
}

// Summary folds the stored results of every category into one
// dashboard-wide rollup.
func (d *Dashboard) Summary() checks.Summary {
	stored := d.db.List()
	maps := make([]map[string]checks.Result, 0, len(stored))
	for _, res := range stored {
		maps = append(maps, res.Results)
	}
	return checks.Summarize(maps...)
}
