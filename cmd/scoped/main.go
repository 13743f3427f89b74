// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command scoped runs the notes demo service on the scoped router.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scoped",
		Short: "Scoped HTTP router demo service",
		Long: `scoped serves a small notes API built on the scoped router.

Routes are declared in nested scopes; each scope carries its own state,
modifiers and fallback. Configuration comes from a YAML, TOML or JSON
file, SCOPED_ environment variables and optionally Consul.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "scoped.yaml", "configuration file (optional)")
	cmd.PersistentFlags().String("env-prefix", "SCOPED_", "prefix of configuration environment variables")

	cmd.AddCommand(
		serveCmd(),
		routesCmd(),
		configCmd(),
		versionCmd(),
	)
	return cmd
}
