package mapping

import (
	"fmt"

	"github.com/vyrodovalexey/avamap/internal/config"
	"github.com/vyrodovalexey/avamap/internal/converter"
	"github.com/vyrodovalexey/avamap/internal/numfmt"
	"github.com/vyrodovalexey/avamap/internal/observability"
)

// NewFromConfig builds an engine from a loaded RuleSet document. The
// document is validated first. A nil logger is built from the document's
// logging settings.
func NewFromConfig(cfg *config.Config, logger observability.Logger) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		var err error
		if logger, err = observability.NewLogger(cfg.Spec.Logging.LogConfig()); err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
	}

	culture, err := numfmt.Lookup(cfg.Spec.Engine.Culture)
	if err != nil {
		return nil, err
	}

	e := New(cfg.Spec.Rules,
		WithLogger(logger.With(observability.String("ruleset", cfg.Metadata.Name))),
		WithConverterOptions(
			converter.WithRegexCacheSize(cfg.Spec.Engine.RegexCacheSize),
			converter.WithRegexTimeout(cfg.Spec.Engine.RegexTimeout.Duration()),
			converter.WithCulture(culture),
		),
	)

	if cfg.Spec.Engine.EnableJoinFields {
		if err := e.RegisterConverter(converter.OpJoinFields, converter.JoinFields); err != nil {
			return nil, fmt.Errorf("register %s: %w", converter.OpJoinFields, err)
		}
	}

	e.logger.Debug("engine built from rule set",
		observability.Int("rules", len(e.rules)),
		observability.String("culture", culture.Name),
		observability.Bool("joinFields", cfg.Spec.Engine.EnableJoinFields))

	return e, nil
}
