package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/utafrali/EcommerceGo/services/review/pkg/middleware"

// routeParamAttrs maps chi URL parameters of the review routes to span
// attribute keys.
var routeParamAttrs = map[string]string{
	"id":        "review.id",
	"productId": "review.product_id",
	"userId":    "review.user_id",
}

// Tracing starts a server span per request, continuing any inbound W3C trace
// context. Once chi has matched the route the span is renamed to
// "METHOD /route/pattern" and tagged with the review, product and user ids
// from the path. The caller id from X-User-ID and the correlation id are
// recorded when present. 5xx responses mark the span as errored.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPMethod(r.Method),
					semconv.HTTPTarget(r.URL.RequestURI()),
					semconv.HTTPScheme(scheme(r)),
					semconv.UserAgentOriginal(r.UserAgent()),
					attribute.String("http.client_ip", r.RemoteAddr),
					attribute.String("service.name", serviceName),
				),
			)
			defer span.End()

			if userID := r.Header.Get(UserIDHeader); userID != "" {
				span.SetAttributes(semconv.EnduserID(userID))
			}
			if correlationID := r.Header.Get(CorrelationIDHeader); correlationID != "" {
				span.SetAttributes(attribute.String("correlation_id", correlationID))
			}

			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					span.SetName(r.Method + " " + pattern)
					span.SetAttributes(attribute.String("http.route", pattern))
				}
				for i, key := range rctx.URLParams.Keys {
					if attr, ok := routeParamAttrs[key]; ok {
						span.SetAttributes(attribute.String(attr, rctx.URLParams.Values[i]))
					}
				}
			}
			span.SetAttributes(semconv.HTTPStatusCode(rec.status))
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
		})
	}
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}
