package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Noah170803/eventio/internal/api/problem"
	"github.com/rs/zerolog"
)

// Recover turns a panicking handler into a 500 problem response. The request
// logger set by CorrelationID is preferred; logger is the fallback.
func Recover(logger zerolog.Logger, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log := zerolog.Ctx(r.Context())
				if log.GetLevel() == zerolog.Disabled {
					log = &logger
				}
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				problem.Write(w, r.WithContext(log.WithContext(r.Context())), http.StatusInternalServerError,
					problem.TypeServerError, "Server error", fmt.Errorf("panic: %v", rec), env)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
