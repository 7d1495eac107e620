package v1

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/retracehq/retrace/sourcemaps"
)

const clientErrorMessage = "Client Side Error"

// reportParams are read from a merged view of the request body, the query
// string and the route, in that order of precedence.
var reportParams = []string{"appName", "stack", "rawUrl"}

func handleReportClientError(cs *ControlSurface, rw http.ResponseWriter, r *http.Request, routeAppName string) {
	params := mergeReportParams(r, routeAppName)

	report := &ClientError{
		AppName: strings.ToLower(params["appName"]),
		RawURL:  params["rawUrl"],
		Stack:   cs.SourceMaps.Retrace(params["stack"], sourcemaps.KeySource),
		Request: RequestInfo{
			Method:  r.Method,
			URL:     r.URL.String(),
			Headers: r.Header.Clone(),
			Body:    "",
		},
	}

	if reporter, ok := cs.Logger.(ClientErrorReporter); ok {
		reporter.ReportClientError(report, clientErrorMessage)
	} else if logger := RequestLogger(r.Context()); logger != nil {
		logger.WithFields(report.LogFields()).Error(clientErrorMessage)
	}

	// The acknowledgment doesn't depend on how, or whether, the report was
	// logged; clients get it even when remapping degraded to a pass-through.
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := fmt.Fprint(rw, "Mail Sent"); err != nil {
		cs.Logger.WithError(err).Error("Error while sending the client error acknowledgment")
	}
}

// mergeReportParams merges the JSON body (lowest precedence), the query
// string, and the route parameter (highest) into one parameter view.
func mergeReportParams(r *http.Request, routeAppName string) map[string]string {
	params := make(map[string]string, len(reportParams))

	if body, err := io.ReadAll(r.Body); err == nil && gjson.ValidBytes(body) {
		for _, name := range reportParams {
			if v := gjson.GetBytes(body, name); v.Exists() {
				params[name] = v.String()
			}
		}
	}
	query := r.URL.Query()
	for _, name := range reportParams {
		if v := query.Get(name); v != "" {
			params[name] = v
		}
	}
	if routeAppName != "" {
		params["appName"] = routeAppName
	}
	return params
}
