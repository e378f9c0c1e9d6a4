// internal/rates/provider.go

// Package rates supplies the three read-only lookups the pricing pipeline
// consumes: material unit costs, labor hourly rates, and VAT rates. Every
// provider is a total function of its inputs: unknown keys and backend
// failures resolve to documented defaults, never to errors. The static
// tables are always the last fallback, so a quote can be produced with no
// backing service at all.
package rates

import "context"

// MaterialProvider resolves the total cost of qty units of a SKU in a city.
// Unit costs are linear in qty.
type MaterialProvider interface {
	MaterialCost(ctx context.Context, sku string, qty float64, city string) float64
}

// LaborProvider resolves the hourly labor rate for a city. Unknown cities get
// the base rate.
type LaborProvider interface {
	HourlyRate(ctx context.Context, city string) float64
}

// VATProvider resolves the VAT rate for a task in a city, in [0,1]. Unknown
// tasks get the default rate.
type VATProvider interface {
	VATRate(ctx context.Context, taskName, city string) float64
}

// Providers bundles the lookups the estimator and finalizer depend on. The
// three fields usually point at the same backing chain but stay separately
// swappable for tests and per-locality overrides.
type Providers struct {
	Materials MaterialProvider
	Labor     LaborProvider
	VAT       VATProvider
}
