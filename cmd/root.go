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
	"fmt"

	"github.com/Daskott/folio/colors"
	"github.com/Daskott/folio/version"
	"github.com/spf13/cobra"
)

var isDevEnv bool

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd = createRootCmd()
	rootCmd.AddCommand(createServerCmd())
	rootCmd.AddCommand(createVersionCmd())
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "folio",
		Short: `folio serves a personal portfolio site: a home page, resume,
projects and a contact form whose messages are kept in a database.`,
		Version:      fmt.Sprintf("v%s", version.Version),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}

func createVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the folio version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("folio v%s\n", version.Version)
		},
	}
}

func formattedError(format string, a ...interface{}) error {
	return fmt.Errorf(colors.Red(format), a...)
}
