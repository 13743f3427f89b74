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
	"fmt"

	"github.com/spf13/cobra"

	"rivaas.dev/scoped/config"
)

func configCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the merged configuration to a file",
		Long: `Merge the config file, environment variables and Consul exactly as
serve does, check the result against the settings schema and write it to
--out. The output format follows the file extension (.yaml, .toml, .json).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := append(sourceOptions(cmd),
				config.WithJSONSchema(config.SettingsSchema),
				config.WithFileDumper(out),
			)
			cfg, err := config.New(opts...)
			if err != nil {
				return fmt.Errorf("configure sources: %w", err)
			}

			ctx := commandContext(cmd)
			if err = cfg.Load(ctx); err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			if err = cfg.Dump(ctx); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "scoped.effective.yaml", "destination file")
	return cmd
}
