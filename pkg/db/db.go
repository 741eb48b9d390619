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

package db

import (
	"sync"
	"time"

	"github.com/caas-team/plover/pkg/checks"
)

// CategoryResult is the stored outcome of one category run.
type CategoryResult struct {
	Category   string                   `json:"category"`
	Results    map[string]checks.Result `json:"results"`
	Summary    checks.Summary           `json:"summary"`
	FinishedAt time.Time                `json:"finished_at"`
}

type DB interface {
	Save(result CategoryResult)
	Get(category string) (result CategoryResult, ok bool)
	List() map[string]CategoryResult
}

var _ DB = (*InMemory)(nil)

// InMemory keeps the latest result per category. A run replaces the
// stored result of its category wholesale.
type InMemory struct {
	// if we ever want a result history per category, the single value
	// can become a ringbuffer without changing the interface
	data sync.Map
}

// NewInMemory creates a new in-memory database
func NewInMemory() *InMemory {
	return &InMemory{
		data: sync.Map{},
	}
}

func (i *InMemory) Save(result CategoryResult) {
	i.data.Store(result.Category, &result)
}

func (i *InMemory) Get(category string) (CategoryResult, bool) {
	tmp, ok := i.data.Load(category)
	if !ok {
		return CategoryResult{}, false
	}
	// this should not fail, otherwise this will panic
	result := tmp.(*CategoryResult)

	return *result, true
}

// Returns a copy of the map
func (i *InMemory) List() map[string]CategoryResult {
	results := make(map[string]CategoryResult)
	i.data.Range(func(key, value any) bool {
		// this assertion should not fail, unless we have a bug somewhere
		category := key.(string)
		result := value.(*CategoryResult)

		results[category] = *result
		return true
	})

	return results
}
