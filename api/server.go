// Package api exposes retrace's REST API over HTTP.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	v1 "github.com/retracehq/retrace/api/v1"
)

func newHandler(cs *v1.ControlSurface) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/v1/", v1.NewHandler(cs))
	mux.Handle("/ping", handlePing(cs.Logger))
	mux.Handle("/", handlePing(cs.Logger))
	return mux
}

// GetServer returns a http.Server instance that can serve retrace's REST API.
func GetServer(addr string, logger logrus.FieldLogger, cs *v1.ControlSurface) *http.Server {
	mux := withLoggingHandler(logger, newHandler(cs))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
}

type wrappedResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *wrappedResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withLoggingHandler returns the middleware which injects a request-scoped
// logger into the context and logs the response status for the request.
func withLoggingHandler(l logrus.FieldLogger, next http.Handler) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		wrapped := &wrappedResponseWriter{ResponseWriter: rw, status: 200} // The default status code is 200 if it's not set
		reqLogger := l.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path})
		next.ServeHTTP(wrapped, r.WithContext(v1.WithRequestLogger(r.Context(), reqLogger)))

		reqLogger.WithField("status", wrapped.status).Debugf("%s %s", r.Method, r.URL.Path)
	}
}

func handlePing(logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Add("Content-Type", "text/plain; charset=utf-8")
		if _, err := fmt.Fprint(rw, "ok"); err != nil {
			logger.WithError(err).Error("Error while printing ok")
		}
	})
}
