// internal/rates/queries.go
package rates

// Named queries against the rate tables. The same DDL lives in
// cmd/tools/rates-seeder, which creates and populates these tables.
const (
	queryMaterialUnitCost = `
		SELECT unit_cost
		FROM material_costs
		WHERE sku = $1 AND (city = $2 OR city = '*')
		ORDER BY CASE WHEN city = $2 THEN 0 ELSE 1 END
		LIMIT 1`

	queryHourlyRate = `
		SELECT hourly_rate
		FROM labor_rates
		WHERE city = $1
		LIMIT 1`

	queryVATRate = `
		SELECT rate
		FROM vat_rates
		WHERE task_name = $1 AND (city = $2 OR city = '*')
		ORDER BY CASE WHEN city = $2 THEN 0 ELSE 1 END
		LIMIT 1`
)
