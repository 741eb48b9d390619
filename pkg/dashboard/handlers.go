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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/caas-team/plover/internal/logger"
	"github.com/caas-team/plover/pkg/api"
	"github.com/caas-team/plover/pkg/checks"
)

type encoder interface {
	Encode(v any) error
}

const urlParamCategory = "category"

// routes builds the route table served by the result API.
func (d *Dashboard) routes(ctx context.Context) []api.Route {
	return []api.Route{
		{Path: "/openapi", Method: http.MethodGet, Handler: d.handleOpenAPI},
		{Path: "/v1/checks", Method: http.MethodGet, Handler: d.handleAllChecks},
		{Path: fmt.Sprintf("/v1/checks/{%s}", urlParamCategory), Method: http.MethodGet, Handler: d.handleCategory},
		{Path: fmt.Sprintf("/v1/checks/{%s}/summary", urlParamCategory), Method: http.MethodGet, Handler: d.handleCategorySummary},
		{Path: "/v1/summary", Method: http.MethodGet, Handler: d.handleSummary},
		{
			Path: "/metrics", Method: "Handle",
			Handler: promhttp.HandlerFor(
				d.metrics.GetRegistry(),
				promhttp.HandlerOpts{Registry: d.metrics.GetRegistry()},
			).ServeHTTP,
		},
	}
}

// handleOpenAPI serves the OpenAPI document of the result payloads.
// The response is yaml unless json is requested via the Accept header.
func (d *Dashboard) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	doc, err := api.GenerateCheckerSpecs(r.Context(), d.checkerMap())
	if err != nil {
		log.Error("Failed to create openapi", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
		return
	}

	mime := r.Header.Get("Accept")

	var marshaler encoder
	switch mime {
	case "application/json":
		marshaler = json.NewEncoder(w)
		w.Header().Add("Content-Type", "application/json")
	default:
		marshaler = yaml.NewEncoder(w)
		w.Header().Add("Content-Type", "text/yaml")
	}

	if err = marshaler.Encode(doc); err != nil {
		log.Error("Failed to marshal openapi", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
	}
}

// handleAllChecks serves the stored results of every category.
func (d *Dashboard) handleAllChecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, d.db.List())
}

// handleCategory serves the stored results of one category.
func (d *Dashboard) handleCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, urlParamCategory)
	if category == "" {
		writeStatus(w, r, http.StatusBadRequest)
		return
	}

	res, ok := d.db.Get(category)
	if !ok {
		writeStatus(w, r, http.StatusNotFound)
		return
	}
	writeJSON(w, r, res)
}

// handleCategorySummary serves the summary rollup of one category.
func (d *Dashboard) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, urlParamCategory)
	if category == "" {
		writeStatus(w, r, http.StatusBadRequest)
		return
	}

	res, ok := d.db.Get(category)
	if !ok {
		writeStatus(w, r, http.StatusNotFound)
		return
	}
	writeJSON(w, r, res.Summary)
}

// handleSummary serves the dashboard-wide summary rollup.
func (d *Dashboard) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, d.Summary())
}

func (d *Dashboard) checkerMap() map[string]checks.Checker {
	m := make(map[string]checks.Checker, len(d.checkers))
	for category, c := range d.checkers {
		m[string(category)] = c
	}
	return m
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	log := logger.FromContext(r.Context())

	w.Header().Add("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
		writeStatus(w, r, http.StatusInternalServerError)
	}
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int) {
	log := logger.FromContext(r.Context())

	w.WriteHeader(status)
	if _, err := w.Write([]byte(http.StatusText(status))); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
