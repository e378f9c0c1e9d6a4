// internal/rates/elastic_test.go
package rates

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"renoquote/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newElasticOverStatic(t *testing.T, handler http.HandlerFunc) *ElasticProvider {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{srv.URL},
	})
	require.NoError(t, err)

	return NewElastic(client, newTestStatic(), "material-catalog", 3*time.Second, logger.NewNoOpLogger())
}

func searchResponse(docs ...materialDoc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hits := make([]map[string]interface{}, 0, len(docs))
		for _, doc := range docs {
			hits = append(hits, map[string]interface{}{"_source": doc})
		}

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{
				"total": map[string]interface{}{"value": len(hits)},
				"hits":  hits,
			},
		})
	}
}

// ==========================
// Catalog Lookup Tests
// ==========================

func TestElastic_MaterialCost_DocFound(t *testing.T) {
	var gotPath, gotBody string
	doc := materialDoc{
		SKU:      "tiles_ceramic_m2",
		UnitCost: 30.0,
		CityMultipliers: map[string]float64{
			"paris": 1.25,
		},
	}
	provider := newElasticOverStatic(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		searchResponse(doc)(w, r)
	})

	got := provider.MaterialCost(context.Background(), "Tiles_Ceramic_M2", 2, "Paris")
	assert.InDelta(t, 75.0, got, 0.0001)
	assert.Equal(t, "/material-catalog/_search", gotPath)
	assert.Contains(t, gotBody, `"sku":"tiles_ceramic_m2"`)
}

func TestElastic_MaterialCost_UnknownCityUsesBaseCost(t *testing.T) {
	doc := materialDoc{
		SKU:      "paint_litre",
		UnitCost: 18.0,
		CityMultipliers: map[string]float64{
			"paris": 1.25,
		},
	}
	provider := newElasticOverStatic(t, searchResponse(doc))

	got := provider.MaterialCost(context.Background(), "paint_litre", 5, "Toulouse")
	assert.InDelta(t, 90.0, got, 0.0001)
}

// ==========================
// Fallback Tests
// ==========================

func TestElastic_MaterialCost_NoHitsFallsBack(t *testing.T) {
	provider := newElasticOverStatic(t, searchResponse())

	got := provider.MaterialCost(context.Background(), "tiles_ceramic_m2", 4, "Marseille")
	assert.InDelta(t, 100.0, got, 0.0001)
}

func TestElastic_MaterialCost_ServerErrorFallsBack(t *testing.T) {
	provider := newElasticOverStatic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
	})

	got := provider.MaterialCost(context.Background(), "paint_litre", 5, "Lyon")
	assert.InDelta(t, 82.5, got, 0.0001)
}

func TestElastic_MaterialCost_TransportErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(searchResponse())
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{srv.URL},
	})
	require.NoError(t, err)
	srv.Close()

	provider := NewElastic(client, newTestStatic(), "material-catalog", 3*time.Second, logger.NewNoOpLogger())

	got := provider.MaterialCost(context.Background(), "toilet_standard", 1, "Marseille")
	assert.InDelta(t, 120.0, got, 0.0001)
}
