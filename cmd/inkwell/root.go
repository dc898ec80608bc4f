// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Inkwell CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inkwell",
		Short: "Inkwell - token-based authentication service",
		Long: `Inkwell is a standalone authentication service supporting both
stateless JWT tokens and server-side opaque API tokens.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
