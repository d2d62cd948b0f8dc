package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-profile-cache/domain"
	"github.com/goliatone/go-profile-cache/logging"
)

// CorrelationHeader carries the correlation id of a request.
const CorrelationHeader = "X-Correlation-ID"

// EffectsFactory builds the per-request domain effects.
type EffectsFactory interface {
	NewEffects(logger *zap.Logger) *domain.Effects
}

type effectsContextKey struct{}

func effectsFrom(ctx context.Context) *domain.Effects {
	e, _ := ctx.Value(effectsContextKey{}).(*domain.Effects)
	return e
}

// correlate tags the request logger with the incoming correlation id, or a
// fresh one, and echoes it back.
func correlate(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CorrelationHeader)
			if id == "" {
				id = logging.NewCorrelationID()
			}
			w.Header().Set(CorrelationHeader, id)

			ctx := logging.NewContextWithLogger(r.Context(), logging.WithCorrelationID(base, id))
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// withEffects attaches fresh effects, loaders included, to every request.
func withEffects(factory EffectsFactory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			effects := factory.NewEffects(logging.FromContext(r.Context()))
			ctx := context.WithValue(r.Context(), effectsContextKey{}, effects)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

func logRequests(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func(start time.Time) {
			logging.FromContext(r.Context()).Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}(time.Now())
		next.ServeHTTP(ww, r)
	}
	return http.HandlerFunc(fn)
}

func recoverer(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.FromContext(r.Context()).Error("panic serving request",
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			respondErr(w, r, domain.UpstreamFailure(fmt.Errorf("panic: %v", rec), "internal error"))
		}()
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
