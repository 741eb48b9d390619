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

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/caas-team/plover/internal/logger"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/dashboard"
	"github.com/caas-team/plover/pkg/datasource"
)

// NewCmdRun creates a new run command
func NewCmdRun() *cobra.Command {
	flagMapping := config.RunFlagsNameMapping{
		ApiAddress: "apiAddress",

		DbHost:     "dbHost",
		DbPort:     "dbPort",
		DbName:     "dbName",
		DbUser:     "dbUser",
		DbPassword: "dbPassword",
		DbPoolSize: "dbPoolSize",

		ThresholdsLoaderType:     "thresholdsLoaderType",
		ThresholdsFilePath:       "thresholdsFilePath",
		ThresholdsHttpUrl:        "thresholdsHttpUrl",
		ThresholdsHttpToken:      "thresholdsHttpToken",
		ThresholdsHttpTimeout:    "thresholdsHttpTimeout",
		ThresholdsHttpRetryCount: "thresholdsHttpRetryCount",
		ThresholdsHttpRetryDelay: "thresholdsHttpRetryDelay",
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run plover",
		Long:  `Plover will evaluate all check categories and serve the results`,
		Run:   run(&flagMapping),
	}

	cmd.PersistentFlags().String(flagMapping.ApiAddress, ":8080", "api: The address the server is listening on")

	cmd.PersistentFlags().String(flagMapping.DbHost, "localhost", "db: The host of the OMOP database")
	cmd.PersistentFlags().Int(flagMapping.DbPort, 5432, "db: The port of the OMOP database")
	cmd.PersistentFlags().String(flagMapping.DbName, "omop", "db: The name of the OMOP database")
	cmd.PersistentFlags().String(flagMapping.DbUser, "postgres", "db: The user to connect with")
	cmd.PersistentFlags().String(flagMapping.DbPassword, "", "db: The password to connect with")
	cmd.PersistentFlags().Int(flagMapping.DbPoolSize, 10, "db: The maximum amount of open connections")

	cmd.PersistentFlags().StringP(flagMapping.ThresholdsLoaderType, "l", "defaults",
		"defines where the classification thresholds are loaded from: defaults, file or http")
	cmd.PersistentFlags().String(flagMapping.ThresholdsFilePath, "thresholds.yaml", "file loader: The path to the thresholds file")
	cmd.PersistentFlags().String(flagMapping.ThresholdsHttpUrl, "", "http loader: The url where to get the thresholds")
	cmd.PersistentFlags().String(flagMapping.ThresholdsHttpToken, "", "http loader: Bearer token to authenticate the http endpoint")
	cmd.PersistentFlags().Int(flagMapping.ThresholdsHttpTimeout, 30, "http loader: The timeout for the http request in seconds")
	cmd.PersistentFlags().Int(flagMapping.ThresholdsHttpRetryCount, 3, "http loader: Amount of retries trying to load the thresholds")
	cmd.PersistentFlags().Int(flagMapping.ThresholdsHttpRetryDelay, 1, "http loader: The initial delay between retries in seconds")

	viper.BindPFlag(flagMapping.ApiAddress, cmd.PersistentFlags().Lookup(flagMapping.ApiAddress))

	viper.BindPFlag(flagMapping.DbHost, cmd.PersistentFlags().Lookup(flagMapping.DbHost))
	viper.BindPFlag(flagMapping.DbPort, cmd.PersistentFlags().Lookup(flagMapping.DbPort))
	viper.BindPFlag(flagMapping.DbName, cmd.PersistentFlags().Lookup(flagMapping.DbName))
	viper.BindPFlag(flagMapping.DbUser, cmd.PersistentFlags().Lookup(flagMapping.DbUser))
	viper.BindPFlag(flagMapping.DbPassword, cmd.PersistentFlags().Lookup(flagMapping.DbPassword))
	viper.BindPFlag(flagMapping.DbPoolSize, cmd.PersistentFlags().Lookup(flagMapping.DbPoolSize))

	viper.BindPFlag(flagMapping.ThresholdsLoaderType, cmd.PersistentFlags().Lookup(flagMapping.ThresholdsLoaderType))
	viper.BindPFlag(flagMapping.ThresholdsFilePath, cmd.PersistentFlags().Lookup(flagMapping.ThresholdsFilePath))
	viper.BindPFlag(flagMapping.ThresholdsHttpUrl, cmd.PersistentFlags().Lookup(flagMapping.ThresholdsHttpUrl))
	viper.BindPFlag(flagMapping.ThresholdsHttpToken, cmd.PersistentFlags().Lookup(flagMapping.ThresholdsHttpToken))
	viper.BindPFlag(flagMapping.ThresholdsHttpTimeout, cmd.PersistentFlags().Lookup(flagMapping.ThresholdsHttpTimeout))
	viper.BindPFlag(flagMapping.ThresholdsHttpRetryCount, cmd.PersistentFlags().Lookup(flagMapping.ThresholdsHttpRetryCount))
	viper.BindPFlag(flagMapping.ThresholdsHttpRetryDelay, cmd.PersistentFlags().Lookup(flagMapping.ThresholdsHttpRetryDelay))

	return cmd
}

// run is the entry point to start the plover dashboard
func run(fm *config.RunFlagsNameMapping) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		log := logger.NewLogger()
		ctx := logger.IntoContext(context.Background(), log)

		cfg := buildConfig(fm)

		if err := cfg.Validate(ctx, fm); err != nil {
			log.Error("Error while validating the config", "error", err)
			panic(err)
		}

		thresholds, err := config.LoadThresholds(ctx, cfg.Thresholds)
		if err != nil {
			log.Error("Error while loading the thresholds", "error", err)
			panic(err)
		}

		ds, err := datasource.NewPostgres(ctx, cfg.Database)
		if err != nil {
			log.Error("Error while connecting to the database", "error", err)
			panic(err)
		}
		defer ds.Close()

		d := dashboard.New(cfg, ds, thresholds)

		log.Info("Running plover")
		if err := d.Run(ctx); err != nil {
			panic(err)
		}
	}
}

// buildConfig collects the viper-bound flag values into a Config.
func buildConfig(fm *config.RunFlagsNameMapping) *config.Config {
	cfg := config.NewConfig()

	cfg.SetApiAddress(viper.GetString(fm.ApiAddress))

	cfg.SetDatabaseHost(viper.GetString(fm.DbHost))
	cfg.SetDatabasePort(viper.GetInt(fm.DbPort))
	cfg.SetDatabaseName(viper.GetString(fm.DbName))
	cfg.SetDatabaseUser(viper.GetString(fm.DbUser))
	cfg.SetDatabasePassword(viper.GetString(fm.DbPassword))
	cfg.SetDatabasePoolSize(viper.GetInt(fm.DbPoolSize))

	cfg.SetThresholdsLoaderType(viper.GetString(fm.ThresholdsLoaderType))
	cfg.SetThresholdsFilePath(viper.GetString(fm.ThresholdsFilePath))
	cfg.SetThresholdsHttpUrl(viper.GetString(fm.ThresholdsHttpUrl))
	cfg.SetThresholdsHttpToken(viper.GetString(fm.ThresholdsHttpToken))
	cfg.SetThresholdsHttpTimeout(viper.GetInt(fm.ThresholdsHttpTimeout))
	cfg.SetThresholdsHttpRetryCount(viper.GetInt(fm.ThresholdsHttpRetryCount))
	cfg.SetThresholdsHttpRetryDelay(viper.GetInt(fm.ThresholdsHttpRetryDelay))

	return cfg
}
