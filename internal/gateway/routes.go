package gateway

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(traceMiddleware)

	r.Get("/", g.handleRoot())
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", promhttp.HandlerFor(g.gatherer, promhttp.HandlerOpts{}))

	r.Post("/webhook/master", g.handleMasterWebhook())
	r.Post("/webhook/{secret}", g.handleCloneWebhook())

	return r
}

// traceMiddleware opens one span per request. With no tracer provider
// installed this is a no-op.
func traceMiddleware(next http.Handler) http.Handler {
	tracer := otel.Tracer("clonehost/gateway")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := spanTarget(r.URL.Path)
		ctx, span := tracer.Start(r.Context(), r.Method+" "+target,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", target),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// spanTarget collapses clone webhook paths so routing secrets never
// reach the trace backend.
func spanTarget(path string) string {
	if strings.HasPrefix(path, "/webhook/") && path != "/webhook/master" {
		return "/webhook/{secret}"
	}
	return path
}
