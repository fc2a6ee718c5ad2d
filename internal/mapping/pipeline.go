package mapping

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avamap/internal/observability"
	"github.com/vyrodovalexey/avamap/internal/path"
	"github.com/vyrodovalexey/avamap/internal/rules"
	"github.com/vyrodovalexey/avamap/internal/value"
)

// Process applies rs to input. It is the re-entry point container operators
// use for nested rule lists.
func (e *Engine) Process(ctx context.Context, input value.Value, rs []rules.Rule) (*value.Object, error) {
	ctx, span := mappingTracer.Start(ctx, "mapping.process",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("mapping.rules_count", len(rs)),
			attribute.String("mapping.input_kind", input.Kind().String()),
		),
	)
	defer span.End()

	result, err := e.process(ctx, input, rs)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

func (e *Engine) process(ctx context.Context, input value.Value, rs []rules.Rule) (*value.Object, error) {
	result := value.NewObject()

	for i := range rs {
		rule := &rs[i]

		resolved, ok := path.Resolve(input, rule.Source)
		if !ok {
			e.logger.Debug("source not found, skipping rule",
				observability.String("source", rule.Source),
				observability.String("target", rule.Target))
			e.metrics.RecordSkip(reasonNotFound)
			continue
		}

		converted, err := e.applyConversions(ctx, resolved, rule)
		if err != nil {
			return nil, fmt.Errorf("rule %q -> %q: %w", rule.Source, rule.Target, err)
		}

		if !rule.IsRootMerge() {
			result.Set(rule.Target, converted)
			continue
		}

		obj, ok := converted.AsObject()
		if !ok {
			e.logger.Debug("discarding non-object root merge",
				observability.String("source", rule.Source),
				observability.String("kind", converted.Kind().String()))
			e.metrics.RecordSkip(reasonRootNotObject)
			continue
		}
		result.Merge(obj)
	}

	return result, nil
}

// applyConversions runs the rule's operator chain over v. Without a chain
// the value is coerced to its native form. Unknown operators leave the
// current value untouched, and a null result ends the chain.
func (e *Engine) applyConversions(ctx context.Context, v value.Value, rule *rules.Rule) (value.Value, error) {
	if !rule.HasConversion() {
		return value.Native(v), nil
	}

	current := v
	for _, op := range rule.Conversion {
		fn, ok := e.registry.Lookup(op)
		if !ok {
			e.logger.Debug("unknown operator, value passed through",
				observability.String("operator", op),
				observability.String("target", rule.Target))
			e.metrics.RecordConversion(unknownOperator, resultUnknown)
			continue
		}

		next, err := fn(ctx, current, rule.Param(op), e)
		if err != nil {
			e.metrics.RecordConversion(op, resultError)
			return value.Null(), err
		}

		current = next
		if current.IsNull() {
			e.metrics.RecordConversion(op, resultNull)
			e.logger.Debug("operator returned null, stopping chain",
				observability.String("operator", op),
				observability.String("target", rule.Target))
			return current, nil
		}
		e.metrics.RecordConversion(op, resultSuccess)
	}

	return current, nil
}
