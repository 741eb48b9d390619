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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/plover/internal/helper"
)

func TestLoadThresholds_Defaults(t *testing.T) {
	for _, loaderType := range []string{"", "defaults"} {
		got, err := LoadThresholds(context.Background(), ThresholdsLoaderConfig{Type: loaderType})
		require.NoError(t, err)
		assert.Equal(t, DefaultThresholds(), got)
	}
}

func TestLoadThresholds_UnknownType(t *testing.T) {
	_, err := LoadThresholds(context.Background(), ThresholdsLoaderConfig{Type: "consul"})
	assert.Error(t, err)
}

func TestLoadThresholds_File(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func(t *Thresholds)
		wantErr bool
	}{
		{
			name: "full override",
			yaml: "completeness:\n  tableWarning: 10\n  tableFail: 30\n",
			want: func(t *Thresholds) {
				t.Completeness.TableWarning = 10
				t.Completeness.TableFail = 30
			},
		},
		{
			name: "absent keys keep their defaults",
			yaml: "statistical:\n  ageOutlierWarning: 3\n",
			want: func(t *Thresholds) {
				t.Statistical.AgeOutlierWarning = 3
			},
		},
		{
			name: "empty file keeps all defaults",
			yaml: "",
			want: func(t *Thresholds) {},
		},
		{
			name:    "invalid yaml",
			yaml:    "completeness: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "thresholds.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			got, err := loadThresholdsFile(context.Background(), FileLoaderConfig{Path: path})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := DefaultThresholds()
			tt.want(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadThresholds_FileNotFound(t *testing.T) {
	_, err := loadThresholdsFile(context.Background(), FileLoaderConfig{Path: "/nonexistent/thresholds.yaml"})
	assert.Error(t, err)
}

func TestLoadThresholds_Http(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	type httpResponder struct {
		statusCode int
		response   string
	}
	tests := []struct {
		name          string
		cfg           HttpLoaderConfig
		httpResponder httpResponder
		want          func(t *Thresholds)
		wantErr       bool
	}{
		{
			name: "fetches and merges thresholds",
			cfg: HttpLoaderConfig{
				Url: "https://thresholds.example.com/thresholds.yaml",
			},
			httpResponder: httpResponder{
				statusCode: 200,
				response:   "conceptMapping:\n  unmappedWarning: 2\n",
			},
			want: func(t *Thresholds) {
				t.ConceptMapping.UnmappedWarning = 2
			},
		},
		{
			name: "fetches with auth token",
			cfg: HttpLoaderConfig{
				Url:   "https://thresholds.example.com/thresholds.yaml",
				Token: "SECRET",
			},
			httpResponder: httpResponder{
				statusCode: 200,
				response:   "referential:\n  orphanWarning: 10\n",
			},
			want: func(t *Thresholds) {
				t.Referential.OrphanWarning = 10
			},
		},
		{
			name: "status 400 fails after retries",
			cfg: HttpLoaderConfig{
				Url: "https://thresholds.example.com/thresholds.yaml",
			},
			httpResponder: httpResponder{
				statusCode: 400,
				response:   "Bad Request",
			},
			wantErr: true,
		},
		{
			name: "payload not yaml fails",
			cfg: HttpLoaderConfig{
				Url: "https://thresholds.example.com/thresholds.yaml",
			},
			httpResponder: httpResponder{
				statusCode: 200,
				response:   "{... not yaml",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder("GET", tt.cfg.Url,
				httpmock.NewStringResponder(tt.httpResponder.statusCode, tt.httpResponder.response))

			tt.cfg.RetryCfg = helper.RetryConfig{Count: 2, Delay: time.Millisecond}

			got, err := loadThresholdsHttp(context.Background(), tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := DefaultThresholds()
			tt.want(&want)
			assert.Equal(t, want, got)
		})
	}
}
