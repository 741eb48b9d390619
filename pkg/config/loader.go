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
	"fmt"
	"io"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/caas-team/plover/internal/helper"
	"github.com/caas-team/plover/internal/logger"
)

// LoadThresholds loads the classification thresholds from the source
// selected in the configuration. Missing entries keep the documented
// defaults; an unknown loader type is a configuration error.
func LoadThresholds(ctx context.Context, cfg ThresholdsLoaderConfig) (Thresholds, error) {
	switch cfg.Type {
	case "", "defaults":
		return DefaultThresholds(), nil
	case "file":
		return loadThresholdsFile(ctx, cfg.File)
	case "http":
		return loadThresholdsHttp(ctx, cfg.Http)
	default:
		return Thresholds{}, fmt.Errorf("unknown thresholds loader type %q", cfg.Type)
	}
}

func loadThresholdsFile(ctx context.Context, cfg FileLoaderConfig) (Thresholds, error) {
	log := logger.FromContext(ctx)
	log.Info("Reading thresholds from file", "file", cfg.Path)

	b, err := os.ReadFile(cfg.Path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	t := DefaultThresholds()
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Thresholds{}, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	return t, nil
}

// loadThresholdsHttp fetches the thresholds from a remote endpoint.
// Failed requests are retried with the configured backoff.
func loadThresholdsHttp(ctx context.Context, cfg HttpLoaderConfig) (Thresholds, error) {
	log := logger.FromContext(ctx)
	log.Info("Fetching thresholds", "url", cfg.Url)

	client := &http.Client{Timeout: cfg.Timeout}
	t := DefaultThresholds()

	fetch := helper.Retry(func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Url, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if cfg.Token != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch thresholds: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("thresholds request failed, status is %s", resp.Status)
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		if err := yaml.Unmarshal(b, &t); err != nil {
			return fmt.Errorf("failed to parse thresholds: %w", err)
		}
		return nil
	}, cfg.RetryCfg)

	if err := fetch(ctx); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}
