package unpoly

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

type contextKey struct{}

// Middleware parses the X-Up request headers once and makes the Unpoly
// instance available to handlers via FromContext. The rendered response
// headers are written just before the first byte of the response body, so
// handlers can keep reading request values (and growing the Vary set)
// until they start writing.
func Middleware(next http.Handler) http.Handler {
	return MiddlewareWithLogger(nil, next)
}

// MiddlewareWithLogger is Middleware with an explicit logger for header
// rendering failures. A console logger is used if nil.
func MiddlewareWithLogger(logger *zerolog.Logger, next http.Handler) http.Handler {
	var log zerolog.Logger
	if logger == nil {
		log = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		log = *logger
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := FromRequest(r)
		hw := &headerWriter{rw: w, up: up, log: log}
		ctx := context.WithValue(r.Context(), contextKey{}, up)
		next.ServeHTTP(hw, r.WithContext(ctx))
		// a handler that never writes still gets its headers applied
		// before net/http sends the implicit 200
		if !hw.wroteHeader {
			hw.inject()
		}
	})
}

// FromContext returns the Unpoly instance stored by Middleware, or nil if
// the middleware did not run for this request.
func FromContext(ctx context.Context) *Unpoly {
	up, _ := ctx.Value(contextKey{}).(*Unpoly)
	return up
}

// FromRequestContext is FromContext over the request's context.
func FromRequestContext(r *http.Request) *Unpoly {
	return FromContext(r.Context())
}

// headerWriter is a wrapper around http.ResponseWriter that injects the
// rendered X-Up headers when the response headers are about to go out.
type headerWriter struct {
	rw          http.ResponseWriter
	up          *Unpoly
	log         zerolog.Logger
	wroteHeader bool
}

// Implementation of http.ResponseWriter
func (w *headerWriter) Header() http.Header {
	return w.rw.Header()
}

// Implementation of http.ResponseWriter
func (w *headerWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.inject()
		w.wroteHeader = true
	}
	w.rw.WriteHeader(statusCode)
}

// Implementation of http.ResponseWriter
func (w *headerWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.rw.Write(b)
}

// inject renders the protocol headers onto the underlying response.
// A render failure is logged and the response proceeds without protocol
// headers; a header encoding problem must not eat the response body.
func (w *headerWriter) inject() {
	headers, err := w.up.Headers()
	if err != nil {
		w.log.Error().Err(err).Msg("Could not render X-Up response headers")
		return
	}
	dst := w.rw.Header()
	for name, values := range headers {
		for _, value := range values {
			if name == HeaderVary {
				// other middleware may declare variance too
				dst.Add(name, value)
			} else {
				dst.Set(name, value)
			}
		}
	}
}
