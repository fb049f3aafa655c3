package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	consumerdata "consumer-portal/internal/workers/consumer-data"
	"consumer-portal/pkg/registry"
)

const defaultPath = "configs/activity-registry.json"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var registryPath string
	root := &cobra.Command{
		Use:          "registry-updater",
		Short:        "Maintain the activity registry of the consumer-data workers",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&registryPath, "path", defaultPath, "path to registry file")

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write the registry from the worker definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := consumerdata.Registry()
			if err := registry.Save(reg, registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d activities to %s\n", len(reg.Activities), registryPath)
			return nil
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := registry.Validate(reg); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Fail when the registry file is out of date with the workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if drift := registry.Diff(reg, consumerdata.Registry()); len(drift) > 0 {
				return fmt.Errorf("registry is stale, run generate: %s", strings.Join(drift, "; "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registry is up to date.")
			return nil
		},
	}

	root.AddCommand(generate, validate, check)
	return root
}
