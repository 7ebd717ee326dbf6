/*
Copyright © 2020 Mars Galactic <EMAIL ADDRESS>

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
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/xoviat/eagle2fritzing/lib/catalog"
	"github.com/xoviat/eagle2fritzing/lib/config"
)

var (
	cfgFile  string
	settings = config.New()
	cfg      *config.Config
	logger   = log.NewWithOptions(os.Stderr, log.Options{Prefix: config.Name})
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.Name,
	Short: "Convert EAGLE libraries into Fritzing parts.",
	Long: `eagle2fritzing converts EAGLE libraries, schematics and boards into
Fritzing part bundles: one .fzp and one SVG per view for every device
variant.

Settings are read from flags, E2F_* environment variables and
eagle2fritzing.yaml in the working directory or the user config directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			settings.SetConfigFile(cfgFile)
		}
		if err := settings.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		c, err := config.Load(settings)
		if err != nil {
			return err
		}
		level, err := log.ParseLevel(c.LogLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		logger.SetLevel(level)

		cfg = c
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openCatalog opens the configured catalog, or the default one.
func openCatalog() (*catalog.Catalog, error) {
	dir := cfg.Catalog
	if dir == "" {
		dir = config.DefaultCatalog()
	}
	return catalog.Open(dir)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./eagle2fritzing.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().String("catalog", "", "catalog directory")
}
