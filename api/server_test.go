package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	v1 "github.com/retracehq/retrace/api/v1"
	"github.com/retracehq/retrace/lib/fsext"
	"github.com/retracehq/retrace/lib/testutils"
	"github.com/retracehq/retrace/sourcemaps"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testMapJSON = `{
	"version": 3,
	"file": "min.js",
	"names": ["bar", "baz", "n"],
	"sources": ["one.js", "two.js"],
	"mappings": "CAAC,IAAI,IAAM,SAAUA,GAClB,OAAOC,IAAID;CCDb,IAAI,IAAM,SAAUE,GAClB,OAAOA"
}`

func getTestControlSurface(t *testing.T, logger logrus.FieldLogger) *v1.ControlSurface {
	t.Helper()
	fs := fsext.NewMemMapFs()
	require.NoError(t, fsext.WriteFile(fs, "/maps/main.cafe01.js.map", []byte(testMapJSON), 0o644))
	store, err := sourcemaps.Load(fs, logger, "/maps")
	require.NoError(t, err)
	cs, err := v1.NewControlSurface(logger, store)
	require.NoError(t, err)
	return cs
}

func TestPing(t *testing.T) {
	t.Parallel()

	logger := testutils.NewLogger(t)
	server := GetServer("localhost:0", logger, getTestControlSurface(t, logger))

	rw := httptest.NewRecorder()
	server.Handler.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/ping", nil))

	res := rw.Result()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", rw.Body.String())
}

func TestReportClientErrorEndToEnd(t *testing.T) {
	t.Parallel()

	logger := testutils.NewLogger(t)
	hook := testutils.NewLogHook(logrus.ErrorLevel)
	logger.AddHook(hook)

	server := GetServer("localhost:0", logger, getTestControlSurface(t, logger))

	stack := strings.Join([]string{
		"Error: boom",
		"    at bar (min.js:1:18)",
		"    at <anonymous>",
	}, "\n")
	body := `{"appName":"App1","stack":` + jsonString(stack) + `,"rawUrl":"/x"}`

	rw := httptest.NewRecorder()
	server.Handler.ServeHTTP(rw,
		httptest.NewRequest(http.MethodPost, "/v1/client-errors", bytes.NewReader([]byte(body))))

	res := rw.Result()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Mail Sent", rw.Body.String())

	entries := hook.Drain()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "Client Side Error", entry.Message)
	assert.Equal(t, "app1", entry.Data["appName"])
	assert.Equal(t, "/x", entry.Data["rawUrl"])

	errField, ok := entry.Data["err"].(map[string]interface{})
	require.True(t, ok)
	loggedStack, ok := errField["stack"].(string)
	require.True(t, ok)
	assert.Contains(t, loggedStack, "one.js:1:21 at bar")
	assert.Contains(t, loggedStack, "Error: boom")
	assert.Contains(t, loggedStack, "    at <anonymous>")
	assert.NotContains(t, loggedStack, "min.js:1:18")

	reqField, ok := entry.Data["req"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "", reqField["body"])
}

func TestLoggingHandlerRecordsStatus(t *testing.T) {
	t.Parallel()

	logger := testutils.NewLogger(t)
	hook := testutils.NewLogHook(logrus.DebugLevel)
	logger.AddHook(hook)

	server := GetServer("localhost:0", logger, getTestControlSurface(t, logger))

	rw := httptest.NewRecorder()
	server.Handler.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/v1/client-errors", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rw.Result().StatusCode)

	var found bool
	for _, entry := range hook.Drain() {
		if status, ok := entry.Data["status"]; ok {
			assert.Equal(t, http.StatusMethodNotAllowed, status)
			found = true
		}
	}
	assert.True(t, found, "expected a log entry with the response status")
}

func jsonString(s string) string {
	return `"` + strings.ReplaceAll(s, "\n", `\n`) + `"`
}
