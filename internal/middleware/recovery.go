package middleware

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/beeper/wellknownserv/internal/util"
)

const httpStatusClientClosed = 499

func NewRecoveryMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let the server abort the connection as it would without us
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				if err := r.Context().Err(); errors.Is(err, context.Canceled) {
					log.Debug().Msg("Context canceled during request")
					w.WriteHeader(httpStatusClientClosed)
					return
				}

				log.Error().
					Str("method", r.Method).
					Stringer("url", r.URL).
					Bytes("stack", debug.Stack()).
					Msgf("Panic in route: %v", rec)

				util.ResponseErrorJSON(w, r, util.MUnknown)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
