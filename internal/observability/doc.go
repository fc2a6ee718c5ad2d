// Package observability provides the structured logger used across the
// module.
//
// Logging is built on zap. Components accept a Logger and fall back to
// NopLogger when none is given:
//
//	logger, err := observability.NewLogger(cfg.Spec.Logging.LogConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("rule set loaded",
//	    observability.String("name", cfg.Metadata.Name),
//	    observability.Int("rules", len(cfg.Spec.Rules)),
//	)
//
// WithContext attaches the trace and span IDs of the active OpenTelemetry
// span, so log lines can be joined with the mapping spans.
package observability
