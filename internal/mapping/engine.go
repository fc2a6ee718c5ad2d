package mapping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avamap/internal/converter"
	"github.com/vyrodovalexey/avamap/internal/encoding"
	"github.com/vyrodovalexey/avamap/internal/observability"
	"github.com/vyrodovalexey/avamap/internal/rules"
	"github.com/vyrodovalexey/avamap/internal/value"
)

// Registration errors.
var (
	// ErrEmptyConverterName indicates a blank operator name.
	ErrEmptyConverterName = converter.ErrEmptyName

	// ErrNilConverter indicates a nil operator function.
	ErrNilConverter = converter.ErrNilFunc
)

const tracerName = "avamap/mapping"

// mappingTracer is swapped in tests together with the global provider.
var mappingTracer = otel.Tracer(tracerName)

// Engine applies a fixed rule list to input values.
type Engine struct {
	rules         []rules.Rule
	registry      *converter.Registry
	codecs        encoding.CodecFactory
	logger        observability.Logger
	metrics       *Metrics
	converterOpts []converter.Option
}

// Option is a functional option for configuring the engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(logger observability.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry makes the engine use an existing registry instead of a fresh
// built-in one. The registry is shared, not copied.
func WithRegistry(registry *converter.Registry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithConverterOptions configures the built-in operators of the registry the
// engine creates. Ignored together with WithRegistry.
func WithConverterOptions(opts ...converter.Option) Option {
	return func(e *Engine) {
		e.converterOpts = append(e.converterOpts, opts...)
	}
}

// WithCodecFactory sets the codecs used by TransformPayload.
func WithCodecFactory(codecs encoding.CodecFactory) Option {
	return func(e *Engine) {
		e.codecs = codecs
	}
}

// New creates an engine for rs. The rule list is copied and never changes
// afterwards.
func New(rs []rules.Rule, opts ...Option) *Engine {
	e := &Engine{
		rules:   append([]rules.Rule(nil), rs...),
		metrics: GetMetrics(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = observability.NopLogger()
	}
	if e.registry == nil {
		e.registry = converter.NewBuiltinRegistry(e.converterOpts...)
	}
	if e.codecs == nil {
		e.codecs = encoding.NewCodecFactory(e.logger)
	}

	return e
}

// Rules returns a copy of the engine's rule list.
func (e *Engine) Rules() []rules.Rule {
	return append([]rules.Rule(nil), e.rules...)
}

// Registry returns the registry the engine resolves operators from.
func (e *Engine) Registry() *converter.Registry {
	return e.registry
}

// RegisterConverter adds fn under name, replacing any operator already
// registered under it, built-ins included. Results produced earlier are not
// affected.
func (e *Engine) RegisterConverter(name string, fn converter.Func) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyConverterName
	}
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNilConverter, name)
	}

	if e.registry.Has(name) {
		e.logger.Info("overriding converter",
			observability.String("operator", name))
	}
	return e.registry.Register(name, fn)
}

// Transform applies the engine's rules to input.
func (e *Engine) Transform(ctx context.Context, input value.Value) (*value.Object, error) {
	ctx, span := mappingTracer.Start(ctx, "mapping.transform",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("mapping.rules_count", len(e.rules)),
			attribute.String("mapping.input_kind", input.Kind().String()),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := e.process(ctx, input, e.rules)
	if err != nil {
		e.metrics.RecordTransform(resultError, time.Since(start).Seconds())
		e.logger.WithContext(ctx).Debug("transform failed", observability.Error(err))
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}

	e.metrics.RecordTransform(resultSuccess, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("mapping.result_keys", result.Len()))
	return result, nil
}

// TransformPayload decodes body as contentType, transforms it and encodes
// the result in the type negotiated from accept. It returns the encoded
// result and its content type.
func (e *Engine) TransformPayload(
	ctx context.Context,
	contentType, accept string,
	body []byte,
) ([]byte, string, error) {
	decoder, err := e.codecs.GetCodec(contentType)
	if err != nil {
		return nil, "", fmt.Errorf("request %q: %w", contentType, err)
	}

	input, err := decoder.Decode(body)
	if err != nil {
		return nil, "", err
	}

	result, err := e.Transform(ctx, input)
	if err != nil {
		return nil, "", err
	}

	outType := encoding.NewNegotiator(
		e.codecs.SupportedTypes(),
		encoding.WithDefaultType(decoder.ContentType()),
		encoding.WithNegotiatorLogger(e.logger),
	).Negotiate(accept)

	encoder, err := e.codecs.GetCodec(outType)
	if err != nil {
		return nil, "", fmt.Errorf("response %q: %w", outType, err)
	}

	out, err := encoder.Encode(value.FromObject(result))
	if err != nil {
		return nil, "", err
	}
	return out, encoder.ContentType(), nil
}
