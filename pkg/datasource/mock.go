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

package datasource

import (
	"context"
	"strings"
	"sync"
)

var _ DataSource = (*Mock)(nil)

// Mock is a scriptable in-memory [DataSource] for tests. Responses are
// registered per query fragment; every executed query is recorded so
// tests can assert which queries were (or were not) issued.
type Mock struct {
	mu sync.Mutex

	// Reachable is returned by Ping.
	Reachable bool
	// Tables is the set of existing tables. A nil map means every
	// table exists.
	Tables map[string]bool

	responses []mockResponse
	executed  []string
}

type mockResponse struct {
	fragment string
	rows     []Row
	err      error
}

// NewMock creates a reachable mock where every table exists and every
// query returns no rows.
func NewMock() *Mock {
	return &Mock{Reachable: true}
}

// ScriptRows registers rows to return for queries containing fragment.
// Fragments are matched in registration order, first match wins.
func (m *Mock) ScriptRows(fragment string, rows ...Row) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{fragment: fragment, rows: rows})
	return m
}

// ScriptError registers an error to return for queries containing fragment.
func (m *Mock) ScriptError(fragment string, err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{fragment: fragment, err: err})
	return m
}

// WithoutTable marks the named table as absent.
func (m *Mock) WithoutTable(name string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Tables == nil {
		m.Tables = map[string]bool{}
	}
	m.Tables[name] = false
	return m
}

func (m *Mock) Query(_ context.Context, query string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executed = append(m.executed, query)

	for _, r := range m.responses {
		if strings.Contains(query, r.fragment) {
			return r.rows, r.err
		}
	}
	return nil, nil
}

func (m *Mock) TableExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Tables == nil {
		return true, nil
	}
	exists, ok := m.Tables[name]
	if !ok {
		return true, nil
	}
	return exists, nil
}

func (m *Mock) Ping(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Reachable
}

func (m *Mock) Close() error { return nil }

// Executed returns a copy of all queries issued against the mock.
func (m *Mock) Executed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.executed))
	copy(out, m.executed)
	return out
}
