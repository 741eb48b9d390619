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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/caas-team/plover/internal/logger"
	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
	"github.com/caas-team/plover/pkg/factory"
)

// NewCmdCheck creates a new check command
func NewCmdCheck() *cobra.Command {
	flagMapping := config.RunFlagsNameMapping{
		DbHost:     "dbHost",
		DbPort:     "dbPort",
		DbName:     "dbName",
		DbUser:     "dbUser",
		DbPassword: "dbPassword",
		DbPoolSize: "dbPoolSize",

		ThresholdsLoaderType: "thresholdsLoaderType",
		ThresholdsFilePath:   "thresholdsFilePath",
	}

	cmd := &cobra.Command{
		Use:       "check [category]",
		Short:     "Run the checks of one category once",
		Long:      `Runs the quality checks of a single category against the database and prints the results as json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: categoryNames(),
		RunE:      check(&flagMapping),
	}

	cmd.PersistentFlags().String(flagMapping.DbHost, "localhost", "db: The host of the OMOP database")
	cmd.PersistentFlags().Int(flagMapping.DbPort, 5432, "db: The port of the OMOP database")
	cmd.PersistentFlags().String(flagMapping.DbName, "omop", "db: The name of the OMOP database")
	cmd.PersistentFlags().String(flagMapping.DbUser, "postgres", "db: The user to connect with")
	cmd.PersistentFlags().String(flagMapping.DbPassword, "", "db: The password to connect with")
	cmd.PersistentFlags().Int(flagMapping.DbPoolSize, 10, "db: The maximum amount of open connections")

	cmd.PersistentFlags().StringP(flagMapping.ThresholdsLoaderType, "l", "defaults",
		"defines where the classification thresholds are loaded from: defaults or file")
	cmd.PersistentFlags().String(flagMapping.ThresholdsFilePath, "thresholds.yaml", "file loader: The path to the thresholds file")

	viper.BindPFlag(flagMapping.DbHost, cmd.PersistentFlags().Lookup(flagMapping.DbHost))
	viper.BindPFlag(flagMapping.DbPort, cmd.PersistentFlags().Lookup(flagMapping.DbPort))
	viper.BindPFlag(flagMapping.DbName, cmd.PersistentFlags().Lookup(flagMapping.DbName))
	viper.BindPFlag(flagMapping.DbUser, cmd.PersistentFlags().Lookup(flagMapping.DbUser))
	viper.BindPFlag(flagMapping.DbPassword, cmd.PersistentFlags().Lookup(flagMapping.DbPassword))
	viper.BindPFlag(flagMapping.DbPoolSize, cmd.PersistentFlags().Lookup(flagMapping.DbPoolSize))

	viper.BindPFlag(flagMapping.ThresholdsLoaderType, cmd.PersistentFlags().Lookup(flagMapping.ThresholdsLoaderType))
	viper.BindPFlag(flagMapping.ThresholdsFilePath, cmd.PersistentFlags().Lookup(flagMapping.ThresholdsFilePath))

	return cmd
}

// check runs the checks of one category and prints the result
func check(fm *config.RunFlagsNameMapping) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log := logger.NewLogger()
		ctx := logger.IntoContext(cmd.Context(), log)

		category, err := factory.ParseCategory(args[0])
		if err != nil {
			return err
		}

		cfg := buildConfig(fm)
		if err = cfg.Validate(ctx, fm); err != nil {
			return err
		}

		thresholds, err := config.LoadThresholds(ctx, cfg.Thresholds)
		if err != nil {
			return err
		}

		ds, err := datasource.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer ds.Close()

		checker, err := factory.New(category, ds, thresholds)
		if err != nil {
			return err
		}

		results, err := checker.Run(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"category": checker.Name(),
			"results":  results,
			"summary":  checker.Summary(),
		}); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		return nil
	}
}

func categoryNames() []string {
	categories := factory.Categories()
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
	}
	return names
}
