// Package app builds the client graph shared by the worker manager and
// the portal command.
package app

import (
	"context"

	"consumer-portal/internal/agency/cfpb"
	"consumer-portal/internal/agency/cpsc"
	"consumer-portal/internal/agency/ftc"
	"consumer-portal/internal/agency/nhtsa"
	"consumer-portal/internal/api"
	"consumer-portal/internal/assistant"
	"consumer-portal/internal/common/config"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/common/observability"
	"consumer-portal/internal/dispatcher"
)

type Services struct {
	CFPB       *cfpb.Client
	NHTSA      *nhtsa.Client
	CPSC       *cpsc.Client
	FTC        *ftc.Client
	Assistant  *assistant.Client
	Dispatcher *dispatcher.Dispatcher
}

// NewServices wires the agency clients over one shared transport, the
// assistant and the dispatcher. obs may be nil.
func NewServices(ctx context.Context, cfg *config.Config, log logger.Logger, obs *observability.Observability) *Services {
	transport := commonhttp.NewClient(
		config.GetDuration(config.DefaultAgencyTimeoutMS),
		commonhttp.WithRelay(commonhttp.NewRelay(cfg.HTTP.RelayPrefix)),
		commonhttp.WithUserAgent(cfg.HTTP.UserAgent),
	)
	agencyHTTP := func(a config.AgencyConfig) *commonhttp.Client {
		return transport.WithTimeout(config.GetDuration(a.Timeout))
	}
	agencyLog := func(name string) logger.Logger {
		return log.With(map[string]interface{}{"agency": name})
	}

	agencies := cfg.Agencies
	s := &Services{
		CFPB: cfpb.NewClient(agencies.CFPB.BaseURL, agencyHTTP(agencies.CFPB), agencyLog("cfpb"),
			cfpb.WithDefaultLimit(agencies.CFPB.DefaultLimit)),
		NHTSA: nhtsa.NewClient(agencies.NHTSA.BaseURL, agencyHTTP(agencies.NHTSA), agencyLog("nhtsa")),
		CPSC:  cpsc.NewClient(agencies.CPSC.BaseURL, agencyHTTP(agencies.CPSC), agencyLog("cpsc")),
		FTC: ftc.NewClient(agencies.FTC.BaseURL, agencies.FTC.APIKey, agencyHTTP(agencies.FTC.AgencyConfig),
			agencyLog("ftc")),
	}

	s.Assistant = assistant.New(ctx, assistant.FromConfig(cfg.Assistant),
		assistant.WithLogger(log))
	if !s.Assistant.IsAvailable() {
		log.Warn("assistant disabled, set GEMINI_API_KEY to enable Gemini features", nil)
	}

	opts := []dispatcher.Option{
		dispatcher.WithLogger(log),
	}
	if obs != nil {
		opts = append(opts, dispatcher.WithObservability(obs))
	}
	s.Dispatcher = dispatcher.New(s.CFPB, s.FTC, s.Assistant, dispatcher.FromConfig(cfg.Dispatcher), opts...)
	return s
}

// APIDeps exposes the services to the HTTP handler.
func (s *Services) APIDeps() api.Deps {
	return api.Deps{
		Dispatcher: s.Dispatcher,
		Assistant:  s.Assistant,
		CFPB:       s.CFPB,
		NHTSA:      s.NHTSA,
		CPSC:       s.CPSC,
		FTC:        s.FTC,
	}
}
