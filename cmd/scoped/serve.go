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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rivaas.dev/scoped/app"
	"rivaas.dev/scoped/config"
)

func serveCmd() *cobra.Command {
	var (
		addr string
		h2c  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the notes service",
		Long: `Start the notes service and block until SIGINT or SIGTERM.

Settings are merged in order: the config file, then SCOPED_ environment
variables (SCOPED_SERVER__ADDR=:9000 sets server.addr), then the Consul key
named by SCOPED_CONSUL_KEY when CONSUL_HTTP_ADDR is set, then flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				settings.Server.Addr = addr
			}
			if cmd.Flags().Changed("h2c") {
				settings.Server.H2C = h2c
			}

			a, err := newNotesApp(settings, newStore(), app.WithOutput(cmd.OutOrStdout()))
			if err != nil {
				return fmt.Errorf("build application: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().BoolVar(&h2c, "h2c", false, "enable HTTP/2 cleartext")
	return cmd
}

// loadSettings reads the settings from the sources named by the root
// command's flags.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := config.LoadSettings(commandContext(cmd), sourceOptions(cmd)...)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// sourceOptions lists the configuration sources in merge order.
func sourceOptions(cmd *cobra.Command) []config.Option {
	path, _ := cmd.Flags().GetString("config")
	prefix, _ := cmd.Flags().GetString("env-prefix")

	opts := []config.Option{
		config.WithOptionalFile(path),
		config.WithEnv(prefix),
	}
	if key := os.Getenv(prefix + "CONSUL_KEY"); key != "" {
		opts = append(opts, config.WithConsul(key))
	}
	return opts
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
