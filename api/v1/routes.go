// Package v1 implements the v1 of the retrace's API
package v1

import (
	"net/http"
)

func NewHandler(cs *ControlSurface) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/client-errors", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleReportClientError(cs, rw, r, "")
	})

	mux.HandleFunc("/v1/client-errors/", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		appName := r.URL.Path[len("/v1/client-errors/"):]
		handleReportClientError(cs, rw, r, appName)
	})

	return mux
}
