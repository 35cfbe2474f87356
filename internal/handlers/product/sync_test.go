package product

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/store"
)

func setupSyncRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store.UseMemory()
	r := gin.New()
	r.POST("/api/products/sync", SyncProducts)
	return r
}

func postSync(t *testing.T, r *gin.Engine, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/products/sync", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSyncProducts_ReturnsResult(t *testing.T) {
	r := setupSyncRouter()

	rr := postSync(t, r, gin.H{
		"source": "csv",
		"items": []gin.H{
			{"sku": "VLT-200", "name": "Casque audio", "price": 59.90, "category": "audio", "stock": 4},
			{"sku": "VLT-201", "name": "Webcam", "price": 45.00, "category": "video", "stock": 9},
		},
	})

	require.Equal(t, http.StatusOK, rr.Code)

	var result models.SyncResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 2, result.Total)
}

func TestSyncProducts_DefaultsToAPISource(t *testing.T) {
	r := setupSyncRouter()

	rr := postSync(t, r, gin.H{
		"items": []gin.H{{"sku": "VLT-210", "name": "Hub USB", "price": 19.90, "category": "peripherals"}},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	products, err := store.Products()
	require.NoError(t, err)
	p, err := products.GetBySKU(context.Background(), "VLT-210")
	require.NoError(t, err)
	assert.Equal(t, models.SyncSourceAPI, p.SyncSource)
}

func TestSyncProducts_RejectsInvalidSource(t *testing.T) {
	r := setupSyncRouter()

	rr := postSync(t, r, gin.H{
		"source": "ftp",
		"items":  []gin.H{{"sku": "VLT-220", "name": "Câble", "price": 5, "category": "misc"}},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Source de synchronisation invalide")
}

func TestSyncProducts_PartialFailure(t *testing.T) {
	r := setupSyncRouter()

	rr := postSync(t, r, gin.H{
		"source": "xml",
		"items": []gin.H{
			{"name": "Sans SKU", "price": 10, "category": "misc"},
			{"sku": "VLT-230", "name": "Valide", "price": 10, "category": "misc"},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var result models.SyncResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 2, result.Total)
}
