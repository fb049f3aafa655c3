package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"consumer-portal/internal/agency/cpsc"
	"consumer-portal/internal/api"
	"consumer-portal/internal/dataset"
	"consumer-portal/internal/models"
)

func searchCmd(opts *options) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search CFPB complaints and FTC fraud reports, with Gemini fallback",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, _, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			if full {
				return printJSON(cmd.OutOrStdout(), s.Dispatcher.Run(cmd.Context(), query))
			}
			return printJSON(cmd.OutOrStdout(), s.Dispatcher.Search(cmd.Context(), query))
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "also interpret the query and search the local dataset")
	return cmd
}

func askCmd(opts *options) *cobra.Command {
	var interpret bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the Gemini assistant a consumer-protection question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, _, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			question := strings.Join(args, " ")
			if interpret {
				intent := s.Dispatcher.Interpret(cmd.Context(), question, s.Dispatcher.Bundle())
				return printJSON(cmd.OutOrStdout(), intent)
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"answer":             s.Assistant.Chat(cmd.Context(), question),
				"assistantAvailable": s.Assistant.IsAvailable(),
			})
		},
	}
	cmd.Flags().BoolVar(&interpret, "interpret", false, "return the structured intent instead of a chat answer")
	return cmd
}

func recallsCmd(opts *options) *cobra.Command {
	var params cpsc.QueryParams
	var recent, strollers bool
	cmd := &cobra.Command{
		Use:   "recalls",
		Short: "Query CPSC product recalls",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, _, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			var res *models.Result
			switch {
			case recent:
				res = s.CPSC.GetRecentRecalls(cmd.Context())
			case strollers:
				res = s.CPSC.GetStrollerPinchHazards(cmd.Context())
			default:
				res = s.CPSC.QueryRecalls(cmd.Context(), params)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&params.RecallTitle, "title", "", "recall title contains")
	f.StringVar(&params.Hazard, "hazard", "", "hazard contains")
	f.StringVar(&params.RecallDateStart, "from", "", "recall date start (YYYY-MM-DD)")
	f.StringVar(&params.RecallDateEnd, "to", "", "recall date end (YYYY-MM-DD)")
	f.StringVar(&params.RecallNumber, "number", "", "recall number")
	f.IntVar(&params.RecallID, "id", 0, "recall id")
	f.StringVar(&params.Manufacturer, "manufacturer", "", "manufacturer")
	f.StringVar(&params.ProductType, "product-type", "", "product type")
	f.StringVar(&params.Format, "format", "", "response format: json or xml")
	f.BoolVar(&recent, "recent", false, "recalls of the last 30 days")
	f.BoolVar(&strollers, "stroller-pinch", false, "stroller pinch-hazard recalls")
	return cmd
}

func vehiclesCmd(opts *options) *cobra.Command {
	var vehicleMake, keyword string
	var year int
	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "Query NHTSA vehicle recalls",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, _, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			var res *models.Result
			switch {
			case vehicleMake != "":
				res = s.NHTSA.GetRecallsByMake(cmd.Context(), vehicleMake, year)
			case keyword != "":
				res = s.NHTSA.SearchRecalls(cmd.Context(), keyword)
			default:
				res = s.NHTSA.GetRecentRecalls(cmd.Context(), year)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&vehicleMake, "make", "", "vehicle make")
	cmd.Flags().StringVar(&keyword, "keyword", "", "summary or component contains")
	cmd.Flags().IntVar(&year, "year", 0, "model year (default: current year)")
	return cmd
}

func fraudCmd(opts *options) *cobra.Command {
	var keyword string
	var limit int
	var analyze bool
	cmd := &cobra.Command{
		Use:   "fraud",
		Short: "List FTC Do Not Call complaints",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, _, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			res := s.FTC.SearchFraudReports(cmd.Context(), keyword, limit)
			if !analyze {
				return printJSON(cmd.OutOrStdout(), res)
			}

			complaints := make([]map[string]interface{}, len(res.Data))
			for i, rec := range res.Data {
				complaints[i] = rec
			}
			patterns, err := s.Assistant.DetectFraudPatterns(cmd.Context(), complaints)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"reports": res, "patterns": patterns})
		},
	}
	cmd.Flags().StringVar(&keyword, "keyword", "", "filter reports containing keyword")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default 50)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "ask Gemini for fraud patterns")
	return cmd
}

func datasetCmd() *cobra.Command {
	var sector, sortBy string
	cmd := &cobra.Command{
		Use:   "dataset [query]",
		Short: "Search the bundled demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := dataset.ParseSortKey(sortBy)
			data := dataset.Demo()
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"liveStats": data.Stats,
				"result":    data.SearchFiltered(strings.Join(args, " "), sector, key),
			})
		},
	}
	cmd.Flags().StringVar(&sector, "sector", dataset.AllSectors, "sector filter")
	cmd.Flags().StringVar(&sortBy, "sort", string(dataset.SortByComplaints), "complaints, recalls or name")
	return cmd
}

func probeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check which agency APIs answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, _, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			return printJSON(cmd.OutOrStdout(), api.ProbeAgencies(ctx, s.APIDeps()))
		},
	}
}

func serveCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, s, log, err := opts.services(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Address
			}

			server := api.NewServer(api.NewHandler(s.APIDeps()), addr, log)
			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.address)")
	return cmd
}
