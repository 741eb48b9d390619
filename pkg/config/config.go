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
	"time"

	"github.com/caas-team/plover/internal/helper"
	"github.com/caas-team/plover/pkg/datasource"
)

// Config is the startup configuration of the engine.
type Config struct {
	Api        ApiConfig
	Database   datasource.PostgresConfig
	Thresholds ThresholdsLoaderConfig
}

// ApiConfig is the configuration for the result API.
type ApiConfig struct {
	ListeningAddress string
}

// ThresholdsLoaderConfig selects where the classification thresholds
// are loaded from. Type is "file", "http" or "defaults".
type ThresholdsLoaderConfig struct {
	Type string
	File FileLoaderConfig
	Http HttpLoaderConfig
}

// FileLoaderConfig configures the file based threshold loader.
type FileLoaderConfig struct {
	Path string
}

// HttpLoaderConfig configures the http based threshold loader.
type HttpLoaderConfig struct {
	Url      string
	Token    string
	Timeout  time.Duration
	RetryCfg helper.RetryConfig
}

// NewConfig creates a new Config with the defaults loader selected.
func NewConfig() *Config {
	return &Config{
		Thresholds: ThresholdsLoaderConfig{Type: "defaults"},
	}
}

func (c *Config) SetApiAddress(address string) {
	c.Api.ListeningAddress = address
}

func (c *Config) SetDatabaseHost(host string) {
	c.Database.Host = host
}

func (c *Config) SetDatabasePort(port int) {
	c.Database.Port = port
}

func (c *Config) SetDatabaseName(name string) {
	c.Database.Database = name
}

func (c *Config) SetDatabaseUser(user string) {
	c.Database.User = user
}

func (c *Config) SetDatabasePassword(password string) {
	c.Database.Password = password
}

func (c *Config) SetDatabasePoolSize(size int) {
	c.Database.PoolSize = size
}

// SetThresholdsLoaderType sets the threshold loader type
func (c *Config) SetThresholdsLoaderType(loaderType string) {
	c.Thresholds.Type = loaderType
}

func (c *Config) SetThresholdsFilePath(path string) {
	c.Thresholds.File.Path = path
}

func (c *Config) SetThresholdsHttpUrl(url string) {
	c.Thresholds.Http.Url = url
}

func (c *Config) SetThresholdsHttpToken(token string) {
	c.Thresholds.Http.Token = token
}

// SetThresholdsHttpTimeout sets the http loader timeout
// timeout in seconds
func (c *Config) SetThresholdsHttpTimeout(timeout int) {
	c.Thresholds.Http.Timeout = time.Duration(timeout) * time.Second
}

func (c *Config) SetThresholdsHttpRetryCount(count int) {
	c.Thresholds.Http.RetryCfg.Count = count
}

// SetThresholdsHttpRetryDelay sets the initial retry delay
// retryDelay in seconds
func (c *Config) SetThresholdsHttpRetryDelay(delay int) {
	c.Thresholds.Http.RetryCfg.Delay = time.Duration(delay) * time.Second
}
