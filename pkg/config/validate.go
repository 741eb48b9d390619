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
	"net/url"

	"github.com/caas-team/plover/internal/logger"
)

// Validates the config
func (c *Config) Validate(ctx context.Context, fm *RunFlagsNameMapping) error {
	log := logger.FromContext(ctx)

	ok := true
	if c.Database.Host == "" {
		ok = false
		log.Error("The database host must be set", fm.DbHost, c.Database.Host)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		ok = false
		log.Error("The database port is not a valid port", fm.DbPort, c.Database.Port)
	}
	if c.Database.Database == "" {
		ok = false
		log.Error("The database name must be set", fm.DbName, c.Database.Database)
	}

	switch c.Thresholds.Type {
	case "", "defaults":
	case "file":
		if c.Thresholds.File.Path == "" {
			ok = false
			log.Error("The thresholds file path must be set", fm.ThresholdsFilePath, c.Thresholds.File.Path)
		}
	case "http":
		if _, err := url.ParseRequestURI(c.Thresholds.Http.Url); err != nil {
			ok = false
			log.Error("The thresholds http url is not a valid url",
				fm.ThresholdsHttpUrl, c.Thresholds.Http.Url)
		}
		if c.Thresholds.Http.RetryCfg.Count < 0 || c.Thresholds.Http.RetryCfg.Count >= 5 {
			ok = false
			log.Error("The amount of thresholds http retries should be above 0 and below 6",
				fm.ThresholdsHttpRetryCount, c.Thresholds.Http.RetryCfg.Count)
		}
	default:
		ok = false
		log.Error("The thresholds loader type is unknown", fm.ThresholdsLoaderType, c.Thresholds.Type)
	}

	if !ok {
		return fmt.Errorf("validation of configuration failed")
	}
	return nil
}
