package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/SkynetNext/bpf-filter/internal/telemetry"
)

// Trace extracts any inbound trace context, opens a span for the admin API
// request, re-injects the context so downstream calls carry it, and records
// the response status on the span before it ends.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := telemetry.ExtractTraceContext(r.Context(), r)
		ctx, span := telemetry.GetTracer().Start(ctx, "admin."+r.Method+" "+r.URL.Path)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
		)

		r = r.WithContext(ctx)
		telemetry.InjectTraceContext(ctx, r)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
	})
}
