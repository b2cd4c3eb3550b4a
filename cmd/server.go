/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"io/fs"

	"github.com/Daskott/folio/server"
	"github.com/Daskott/folio/shared"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serverConfigFile string
	envFile          string
	validateOnly     bool
)

func createServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the folio web server",
		Long: `Start the folio web server. Settings are read from the --sconfig file and
the environment (MYSQL_HOST, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DB, PORT or FOLIO_*).
In development mode an embedded config backed by sqlite is used when no file is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			devMode := shared.IsDevelopment(isDevEnv)

			config, err := serverConfig(devMode)
			if err != nil {
				return err
			}

			if validateOnly {
				cmd.Println("server config is valid")
				return nil
			}

			server.Start(config, devMode)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "config for server")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "file with environment variables to load, if present")
	cmd.Flags().BoolVar(&validateOnly, "validate", false, "validate the server config and exit")

	return cmd
}

func serverConfig(devMode bool) (*shared.ServerConfig, error) {
	// Variables already set in the environment win over the env file
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, formattedError("error loading env file %q: %v", envFile, err)
	}

	config, err := shared.LoadServerConfig(serverConfigFile, devMode)
	if err != nil {
		return nil, formattedError("%v", err)
	}

	return config, nil
}
