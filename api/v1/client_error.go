package v1

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ClientError is the structured record built from an error report submitted
// by a frontend client.
type ClientError struct {
	AppName string
	RawURL  string
	Stack   string
	Request RequestInfo
}

// RequestInfo captures the reporting request for the log record. The body is
// always redacted to empty, only the headers are preserved.
type RequestInfo struct {
	Method  string
	URL     string
	Headers http.Header
	Body    string
}

// LogFields flattens the report into logrus fields, keeping the remapped
// stack under err.stack where the log pipeline expects it.
func (ce *ClientError) LogFields() logrus.Fields {
	return logrus.Fields{
		"err":     map[string]interface{}{"stack": ce.Stack},
		"appName": ce.AppName,
		"rawUrl":  ce.RawURL,
		"req": map[string]interface{}{
			"method":  ce.Request.Method,
			"url":     ce.Request.URL,
			"headers": ce.Request.Headers,
			"body":    ce.Request.Body,
		},
	}
}

// ClientErrorReporter is the capability a logger can implement to take over
// client error reports. Loggers without it get the report as a regular
// error-level entry on the request-scoped logger instead.
type ClientErrorReporter interface {
	ReportClientError(report *ClientError, msg string)
}

type ctxKey int

const ctxKeyRequestLogger ctxKey = iota

// WithRequestLogger returns a copy of ctx carrying a request-scoped logger.
func WithRequestLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKeyRequestLogger, logger)
}

// RequestLogger returns the request-scoped logger from ctx, or nil if the
// request didn't come through the server middleware.
func RequestLogger(ctx context.Context) logrus.FieldLogger {
	logger, _ := ctx.Value(ctxKeyRequestLogger).(logrus.FieldLogger)
	return logger
}
