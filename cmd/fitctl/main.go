// Command fitctl inspects and repairs the per-device state records and checks
// catalog documents before they are deployed.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fitpulse/internal/config"
)

const commandTimeout = 30 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "fitctl",
		Short:         "Admin tool for the fitpulse state service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the stored state of a device",
	}

	showCmd := &cobra.Command{
		Use:   "show <device-id>",
		Short: "Print the onboarding, auth and recipe records of a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(ctx context.Context, b backend) error {
				return showState(ctx, b.storage, args[0], cmd.OutOrStdout())
			})
		},
	}

	var yes bool
	resetCmd := &cobra.Command{
		Use:   "reset <device-id>",
		Short: "Delete every stored record of a device",
		Long: "Delete every stored record of a device. A running server keeps the " +
			"device's state in memory until the session has been idle for " +
			"SESSION_IDLE_MINUTES, so reset idle devices or while the server is stopped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset %s without --yes", args[0])
			}
			return withStorage(cmd.Context(), func(ctx context.Context, b backend) error {
				return resetState(ctx, b.storage, args[0], cmd.OutOrStdout())
			})
		},
	}
	resetCmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with catalog documents",
	}

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse and validate a catalog JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateCatalog(args[0], cmd.OutOrStdout())
		},
	}

	stateCmd.AddCommand(showCmd, resetCmd)
	catalogCmd.AddCommand(validateCmd)
	root.AddCommand(stateCmd, catalogCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withStorage opens the configured state backend for the duration of fn.
func withStorage(parent context.Context, fn func(ctx context.Context, b backend) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, commandTimeout)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	return fn(ctx, b)
}
