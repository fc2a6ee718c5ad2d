package mapping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vyrodovalexey/avamap/internal/value"
)

// installExporter routes spans to an in-memory exporter for the duration of
// the test. Callers must not run in parallel because the global provider is
// replaced.
func installExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	oldTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	mappingTracer = otel.Tracer(tracerName)

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(oldTP)
		mappingTracer = otel.Tracer(tracerName)
	})
	return exporter
}

func spanAttrs(s tracetest.SpanStub) map[string]interface{} {
	attrs := make(map[string]interface{})
	for _, a := range s.Attributes {
		attrs[string(a.Key)] = a.Value.AsInterface()
	}
	return attrs
}

// TestEngine_OTELSpans is NOT parallel because it modifies the global OTEL
// tracer provider.
func TestEngine_OTELSpans(t *testing.T) {
	t.Run("transform_creates_span", func(t *testing.T) {
		exporter := installExporter(t)

		e := New(mustRules(t, `[{"source":"a","target":"a"},{"source":"b","target":"b"}]`))
		_, err := e.Transform(context.Background(), value.MustParseJSON(`{"a":1}`))
		require.NoError(t, err)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "mapping.transform", spans[0].Name)

		attrs := spanAttrs(spans[0])
		assert.Equal(t, int64(2), attrs["mapping.rules_count"])
		assert.Equal(t, "object", attrs["mapping.input_kind"])
		assert.Equal(t, int64(1), attrs["mapping.result_keys"])
	})

	t.Run("nested_rules_create_child_spans", func(t *testing.T) {
		exporter := installExporter(t)

		e := New(mustRules(t, `[{"source":"items","target":"items","conversion":["map_array"],
			"conversion_params":{"map_array":[{"source":"id","target":"id"}]}}]`))
		_, err := e.Transform(context.Background(), value.MustParseJSON(`{"items":[{"id":1},{"id":2}]}`))
		require.NoError(t, err)

		spans := exporter.GetSpans()
		var root tracetest.SpanStub
		var children []tracetest.SpanStub
		for _, s := range spans {
			switch s.Name {
			case "mapping.transform":
				root = s
			case "mapping.process":
				children = append(children, s)
			}
		}

		require.Len(t, children, 2)
		for _, c := range children {
			assert.Equal(t, root.SpanContext.SpanID(), c.Parent.SpanID())
			assert.Equal(t, int64(1), spanAttrs(c)["mapping.rules_count"])
		}
	})

	t.Run("error_sets_status", func(t *testing.T) {
		exporter := installExporter(t)

		e := New(mustRules(t, `[{"source":"o","target":"o","conversion":["map_object"],
			"conversion_params":{"map_object":[{"target":"x"}]}}]`))
		_, err := e.Transform(context.Background(), value.MustParseJSON(`{"o":{}}`))
		require.Error(t, err)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "mapping.transform", spans[0].Name)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.NotEmpty(t, spans[0].Events)
	})
}
