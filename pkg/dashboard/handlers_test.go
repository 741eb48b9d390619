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

package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/plover/pkg/checks"
	"github.com/caas-team/plover/pkg/datasource"
	"github.com/caas-team/plover/pkg/db"
)

// newRouter builds a chi router from the dashboard's route table.
func newRouter(t *testing.T, d *Dashboard) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	for _, route := range d.routes(context.Background()) {
		switch route.Method {
		case http.MethodGet:
			r.Get(route.Path, route.Handler)
		case "Handle":
			r.Handle(route.Path, route.Handler)
		default:
			t.Fatalf("unexpected method %q in route table", route.Method)
		}
	}
	return r
}

func TestHandleCategory(t *testing.T) {
	d := newDashboard(datasource.NewMock())
	d.db.Save(db.CategoryResult{
		Category: "referential",
		Results: map[string]checks.Result{
			"foreign_key_violations": {
				Status:  checks.StatusFail,
				Message: "found 2 foreign key violations",
				Metrics: map[string]float64{"violation_count": 2},
			},
		},
		Summary: checks.Summary{Total: 1, Failed: 1},
	})
	router := newRouter(t, d)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/checks/referential", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got db.CategoryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, checks.StatusFail, got.Results["foreign_key_violations"].Status)
	assert.Equal(t, float64(2), got.Results["foreign_key_violations"].Metrics["violation_count"])
}

func TestHandleCategory_NotFound(t *testing.T) {
	router := newRouter(t, newDashboard(datasource.NewMock()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/checks/latency", http.NoBody))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCategorySummary(t *testing.T) {
	d := newDashboard(datasource.NewMock())
	d.db.Save(db.CategoryResult{
		Category: "temporal",
		Summary:  checks.Summary{Total: 5, Passed: 4, Failed: 1},
	})
	router := newRouter(t, d)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/checks/temporal/summary", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)

	var got checks.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, checks.Summary{Total: 5, Passed: 4, Failed: 1}, got)
}

func TestHandleAllChecksAndSummary(t *testing.T) {
	d := newDashboard(datasource.NewMock())
	d.RunChecks(context.Background())
	router := newRouter(t, d)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/checks", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var all map[string]db.CategoryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 5)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/summary", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary checks.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Positive(t, summary.Total)
}

func TestHandleOpenAPI(t *testing.T) {
	router := newRouter(t, newDashboard(datasource.NewMock()))

	t.Run("yaml by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi", http.NoBody))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/yaml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "/v1/checks/completeness")
	})

	t.Run("json on accept header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/openapi", http.NoBody)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var doc map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "3.0.0", doc["openapi"])
	})
}

func TestHandleMetrics(t *testing.T) {
	d := newDashboard(datasource.NewMock())
	d.RunChecks(context.Background())
	router := newRouter(t, d)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "plover_check_status"),
		fmt.Sprintf("expected the status gauge in the exposition, got:\n%.200s", rec.Body.String()))
}
