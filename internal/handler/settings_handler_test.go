package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/docstore"
	"github.com/imrann-dev/school-erp-api/internal/service"
)

func newSettingsHandler(t *testing.T) *SettingsHandler {
	t.Helper()
	store := docstore.New(docstore.KindSettings, docstore.NewMemoryPersistence(), docstore.SettingsDefaults, zap.NewNop())
	return NewSettingsHandler(service.NewSettingsService(store, nil, zap.NewNop()))
}

func TestSettingsHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSettingsHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/settings/student", nil)
	c.Params = gin.Params{{Key: "role", Value: "student"}}

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Data, "profile")
	assert.Contains(t, envelope.Data, "notifications")
}

func TestSettingsHandlerGetInvalidRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSettingsHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/settings/janitor", nil)
	c.Params = gin.Params{{Key: "role", Value: "janitor"}}

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsHandlerUpdateSection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSettingsHandler(t)

	body, _ := json.Marshal(map[string]interface{}{
		"patch": map[string]interface{}{"name": "Sarah Johnson"},
	})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/settings/teacher/profile", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "role", Value: "teacher"}, {Key: "section", Value: "profile"}}

	handler.UpdateSection(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	profile := envelope.Data["profile"].(map[string]interface{})
	assert.Equal(t, "Sarah Johnson", profile["name"])
}

func TestSettingsHandlerUpdateRejectsBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSettingsHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/settings/student", bytes.NewReader([]byte("not json")))
	c.Params = gin.Params{{Key: "role", Value: "student"}}

	handler.Update(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
