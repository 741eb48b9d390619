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

// Package factory constructs category checkers by name.
package factory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/checks/completeness"
	"github.com/caas-team/plover/pkg/checks/conceptmapping"
	"github.com/caas-team/plover/pkg/checks/referential"
	"github.com/caas-team/plover/pkg/checks/statistical"
	"github.com/caas-team/plover/pkg/checks/temporal"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
)

// Category identifies one registered check category.
type Category string

const (
	CategoryCompleteness   Category = completeness.CheckerName
	CategoryTemporal       Category = temporal.CheckerName
	CategoryConceptMapping Category = conceptmapping.CheckerName
	CategoryReferential    Category = referential.CheckerName
	CategoryStatistical    Category = statistical.CheckerName
)

// ErrUnknownChecker is returned when a checker is requested for a
// category that was never registered.
var ErrUnknownChecker = errors.New("unknown checker category")

// Constructor builds a checker bound to a data source and thresholds.
type Constructor func(datasource.DataSource, config.Thresholds) checks.Checker

var registry = map[Category]Constructor{
	CategoryCompleteness:   completeness.NewChecker,
	CategoryTemporal:       temporal.NewChecker,
	CategoryConceptMapping: conceptmapping.NewChecker,
	CategoryReferential:    referential.NewChecker,
	CategoryStatistical:    statistical.NewChecker,
}

// New constructs the checker registered for the given category.
func New(category Category, ds datasource.DataSource, t config.Thresholds) (checks.Checker, error) {
	build, ok := registry[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChecker, category)
	}
	return build(ds, t), nil
}

// NewAll constructs one checker per registered category.
func NewAll(ds datasource.DataSource, t config.Thresholds) map[Category]checks.Checker {
	all := make(map[Category]checks.Checker, len(registry))
	for category, build := range registry {
		all[category] = build(ds, t)
	}
	return all
}

// Register adds a constructor for a new category. Registering an
// already known category overwrites its constructor.
func Register(category Category, build Constructor) {
	registry[category] = build
}

// Categories returns the registered categories in lexical order.
func Categories() []Category {
	out := make([]Category, 0, len(registry))
	for category := range registry {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCategory validates a user supplied category name.
func ParseCategory(s string) (Category, error) {
	if _, ok := registry[Category(s)]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownChecker, s)
	}
	return Category(s), nil
}
