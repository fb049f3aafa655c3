package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"consumer-portal/internal/app"
	"consumer-portal/internal/common/config"
	"consumer-portal/internal/common/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options carries the persistent flags shared by every subcommand.
type options struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Query US consumer-protection agencies from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level for the command")

	root.AddCommand(
		searchCmd(opts),
		askCmd(opts),
		recallsCmd(opts),
		vehiclesCmd(opts),
		fraudCmd(opts),
		datasetCmd(),
		probeCmd(opts),
		serveCmd(opts),
	)
	return root
}

func (o *options) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromFile(o.configPath)
	}
	return config.Load()
}

// services loads config and wires the client graph with a console logger.
func (o *options) services(ctx context.Context) (*config.Config, *app.Services, logger.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewStructured(o.logLevel, "console")
	return cfg, app.NewServices(ctx, cfg, log, nil), log, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
