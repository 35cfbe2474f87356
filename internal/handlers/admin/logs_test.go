package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/store"
)

func setupAdminRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store.UseMemory()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "u-1")
		c.Set("email", "admin@veltra.io")
		c.Set("role", "admin")
	})
	r.GET("/api/logs/timeline", GetLogTimeline)
	r.DELETE("/api/logs/cleanup", CleanupLogs)
	return r
}

func TestGetLogTimeline_EchoesEffectiveWindow(t *testing.T) {
	r := setupAdminRouter()

	// days=0 retombe sur la fenêtre par défaut, et c'est elle qui doit
	// être renvoyée
	req := httptest.NewRequest(http.MethodGet, "/api/logs/timeline?days=0", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Days int `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Days)
}

func TestCleanupLogs_EchoesEffectiveRetention(t *testing.T) {
	r := setupAdminRouter()

	logs, err := store.Logs()
	require.NoError(t, err)
	old := models.AuditLogEntry{Message: "ancienne", CreatedAt: time.Now().AddDate(0, 0, -90)}
	require.NoError(t, logs.Insert(context.Background(), &old))

	req := httptest.NewRequest(http.MethodDelete, "/api/logs/cleanup?days=0", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Days         int `json:"days"`
		DeletedCount int `json:"deleted_count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 30, resp.Days)
	assert.Equal(t, 1, resp.DeletedCount)
}

func TestCleanupLogs_ForbiddenWithoutAdminRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store.UseMemory()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "u-2")
		c.Set("role", "user")
	})
	r.DELETE("/api/logs/cleanup", CleanupLogs)

	req := httptest.NewRequest(http.MethodDelete, "/api/logs/cleanup", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
