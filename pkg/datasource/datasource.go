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
	"fmt"
	"strconv"
	"time"
)

// Row is a single record of a query result, keyed by column name.
type Row map[string]any

// DataSource is the read-only port to the OMOP database consumed by
// every checker. Implementations must be safe for concurrent use and
// must return failures as errors, never panic.
type DataSource interface {
	// Query executes the given SQL and returns the result rows in order.
	Query(ctx context.Context, query string) ([]Row, error)
	// TableExists reports whether the named table exists in the database.
	TableExists(ctx context.Context, name string) (bool, error)
	// Ping reports whether the database is reachable.
	Ping(ctx context.Context) bool
	// Close releases the underlying connection pool.
	Close() error
}

// Float reads the named column as a float64. Integer and string column
// values are converted; missing or non-numeric values yield 0.
func (r Row) Float(column string) float64 {
	switch v := r[column].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Int reads the named column as an int64, converting where necessary.
func (r Row) Int(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		i, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0
		}
		return i
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// String reads the named column as a string.
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.DateOnly)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
