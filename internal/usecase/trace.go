package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("prop-insights/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan opens a span for one usecase entry point. Batch runs have
// no inbound request to parent on, so a run-level call becomes the trace
// root; the global tracer is a noop unless the observability bootstrap
// installed a provider.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name)
}
