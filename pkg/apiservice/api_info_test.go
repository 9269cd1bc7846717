package apiservice

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func serveInfo(t *testing.T, info *APIInfo) map[string]json.RawMessage {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	info.registerRouter(router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAPIInfoStatuses(t *testing.T) {
	info := NewAPIInfo()
	info.SetStatusRunning("orders")
	info.SetStatusFatalError("users", errors.New("stage gone"))

	body := serveInfo(t, info)

	var statuses map[string]ServiceStatus
	require.NoError(t, json.Unmarshal(body["status"], &statuses))
	require.Equal(t, ServiceStatusRunning, statuses["orders"])
	require.Equal(t, ServiceStatusFatalError, statuses["users"])

	var messages map[string]string
	require.NoError(t, json.Unmarshal(body["error_message"], &messages))
	require.Equal(t, "stage gone", messages["users"])
}

func TestAPIInfoFatalErrorLatches(t *testing.T) {
	info := NewAPIInfo()
	info.SetStatusFatalError("users", errors.New("first"))
	info.SetStatusFatalError("users", errors.New("second"))
	// a fatal pipeline cannot go back to running
	info.SetStatusRunning("users")

	body := serveInfo(t, info)

	var messages map[string]string
	require.NoError(t, json.Unmarshal(body["error_message"], &messages))
	require.Equal(t, "first", messages["users"])
}

func TestAPIInfoGlobalFatalError(t *testing.T) {
	info := NewAPIInfo()
	info.SetStatusRunning("orders")
	info.SetGlobalStatusFatalError(errors.New("connection lost"))

	body := serveInfo(t, info)

	var status ServiceStatus
	require.NoError(t, json.Unmarshal(body["status"], &status))
	require.Equal(t, ServiceStatusFatalError, status)

	var message string
	require.NoError(t, json.Unmarshal(body["error_message"], &message))
	require.Equal(t, "connection lost", message)
}
