// internal/rates/elastic.go
package rates

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"renoquote/internal/common/logger"
	"renoquote/internal/common/metrics"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// materialDoc is one SKU document in the catalog index. UnitCost is the base
// cost; CityMultipliers scales it per city, defaulting to 1.0, so a single
// document serves every city.
type materialDoc struct {
	SKU             string             `json:"sku"`
	UnitCost        float64            `json:"unit_cost"`
	CityMultipliers map[string]float64 `json:"city_multipliers"`
}

// ElasticProvider resolves material costs from the SKU catalog index.
// Anything short of exactly one readable hit falls back to the wrapped
// provider.
type ElasticProvider struct {
	client   *elasticsearch.Client
	fallback MaterialProvider
	index    string
	timeout  time.Duration
	logger   logger.Logger
}

// NewElastic wraps an Elasticsearch client over the given catalog index.
func NewElastic(client *elasticsearch.Client, fallback MaterialProvider, index string, timeout time.Duration, log logger.Logger) *ElasticProvider {
	return &ElasticProvider{
		client:   client,
		fallback: fallback,
		index:    index,
		timeout:  timeout,
		logger:   log.Named("rates.elastic"),
	}
}

// MaterialCost resolves the SKU document and prices qty units for city.
func (p *ElasticProvider) MaterialCost(ctx context.Context, sku string, qty float64, city string) float64 {
	doc, ok := p.lookup(ctx, sku)
	if !ok {
		metrics.ProviderFallbacks.WithLabelValues("elasticsearch", "material").Inc()
		return p.fallback.MaterialCost(ctx, sku, qty, city)
	}

	multiplier := 1.0
	if m, ok := doc.CityMultipliers[strings.ToLower(city)]; ok {
		multiplier = m
	}
	return doc.UnitCost * qty * multiplier
}

func (p *ElasticProvider) lookup(ctx context.Context, sku string) (*materialDoc, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"sku": strings.ToLower(sku),
			},
		},
	}
	body, _ := json.Marshal(queryBody)

	size := 1
	req := esapi.SearchRequest{
		Index: []string{p.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		p.logger.WithError(err).Warn("catalog search failed", map[string]interface{}{
			"sku": sku,
		})
		return nil, false
	}
	defer res.Body.Close()

	if res.IsError() {
		p.logger.Warn("catalog search returned error status", map[string]interface{}{
			"sku":    sku,
			"status": res.StatusCode,
		})
		return nil, false
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source materialDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		p.logger.WithError(err).Warn("catalog response decode failed", map[string]interface{}{
			"sku": sku,
		})
		return nil, false
	}

	if len(r.Hits.Hits) == 0 {
		p.logger.Debug("sku not in catalog index", map[string]interface{}{
			"sku": sku,
		})
		return nil, false
	}
	return &r.Hits.Hits[0].Source, true
}
