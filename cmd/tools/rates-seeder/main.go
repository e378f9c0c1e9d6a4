// cmd/tools/rates-seeder/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"renoquote/internal/common/config"
	"renoquote/internal/common/database"
	"renoquote/internal/rates"
)

// Schema matched by the lookup queries in internal/rates. The '*' city row is
// the city-independent default the material and VAT lookups fall back to.
const (
	ddlMaterialCosts = `CREATE TABLE IF NOT EXISTS material_costs (
		sku       TEXT NOT NULL,
		city      TEXT NOT NULL,
		unit_cost DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (sku, city)
	)`

	ddlLaborRates = `CREATE TABLE IF NOT EXISTS labor_rates (
		city        TEXT PRIMARY KEY,
		hourly_rate DOUBLE PRECISION NOT NULL
	)`

	ddlVATRates = `CREATE TABLE IF NOT EXISTS vat_rates (
		task_name TEXT NOT NULL,
		city      TEXT NOT NULL,
		rate      DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (task_name, city)
	)`

	upsertMaterialCost = `INSERT INTO material_costs (sku, city, unit_cost) VALUES ($1, $2, $3)
		ON CONFLICT (sku, city) DO UPDATE SET unit_cost = EXCLUDED.unit_cost`

	upsertLaborRate = `INSERT INTO labor_rates (city, hourly_rate) VALUES ($1, $2)
		ON CONFLICT (city) DO UPDATE SET hourly_rate = EXCLUDED.hourly_rate`

	upsertVATRate = `INSERT INTO vat_rates (task_name, city, rate) VALUES ($1, $2, $3)
		ON CONFLICT (task_name, city) DO UPDATE SET rate = EXCLUDED.rate`
)

func main() {
	configPath := flag.String("config", "", "config file (default: configs/config.yaml lookup)")
	warmRedis := flag.Bool("warm-redis", false, "also pre-populate the redis rate cache")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.Ping(ctx); err != nil {
		fmt.Printf("Error pinging PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	if err := createTables(ctx, pg.GetDB()); err != nil {
		fmt.Printf("Error creating tables: %v\n", err)
		os.Exit(1)
	}

	materials, labor, vat, err := seedRates(ctx, pg.GetDB(), cfg)
	if err != nil {
		fmt.Printf("Error seeding rates: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d material rows, %d labor rows, %d VAT rows\n", materials, labor, vat)

	if *warmRedis {
		warmed, err := warmCache(ctx, cfg)
		if err != nil {
			fmt.Printf("Error warming redis cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Warmed %d cache entries\n", warmed)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func createTables(ctx context.Context, db *sql.DB) error {
	for _, ddl := range []string{ddlMaterialCosts, ddlLaborRates, ddlVATRates} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// seedRates writes the configured static tables as rows: a '*' base row per
// material sku plus one baked row per known city, city labor rates, and the
// per-task VAT overrides.
func seedRates(ctx context.Context, db *sql.DB, cfg *config.Config) (materials, labor, vat int, err error) {
	for sku, base := range cfg.Rates.MaterialBaseCosts {
		sku = strings.ToLower(sku)
		if _, err = db.ExecContext(ctx, upsertMaterialCost, sku, "*", base); err != nil {
			return
		}
		materials++
		for city, mult := range cfg.Rates.CityMultipliers {
			if _, err = db.ExecContext(ctx, upsertMaterialCost, sku, strings.ToLower(city), base*mult); err != nil {
				return
			}
			materials++
		}
	}

	for city, mult := range cfg.Rates.CityMultipliers {
		rate := cfg.Rates.BaseHourlyRate * mult
		if _, err = db.ExecContext(ctx, upsertLaborRate, strings.ToLower(city), rate); err != nil {
			return
		}
		labor++
	}

	for taskName, rate := range cfg.Rates.VATOverrides {
		if _, err = db.ExecContext(ctx, upsertVATRate, strings.ToLower(taskName), "*", rate); err != nil {
			return
		}
		vat++
	}

	return
}

// warmCache writes the same values under the keys the cached provider reads,
// so the first quote run after seeding hits warm entries.
func warmCache(ctx context.Context, cfg *config.Config) (int, error) {
	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return 0, err
	}
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		return 0, err
	}

	prefix := cfg.Rates.RedisCache.KeyPrefix
	ttl := config.GetDuration(cfg.Rates.RedisCache.TTL)
	warmed := 0

	rdb := redisClient.GetClient()
	set := func(key string, value float64) error {
		return rdb.Set(ctx, key, strconv.FormatFloat(value, 'f', -1, 64), ttl).Err()
	}

	for sku, base := range cfg.Rates.MaterialBaseCosts {
		for city, mult := range cfg.Rates.CityMultipliers {
			if err := set(rates.CacheKey(prefix, "material", sku, city), base*mult); err != nil {
				return warmed, err
			}
			warmed++
		}
	}

	for city, mult := range cfg.Rates.CityMultipliers {
		if err := set(rates.CacheKey(prefix, "labor", city), cfg.Rates.BaseHourlyRate*mult); err != nil {
			return warmed, err
		}
		warmed++
	}

	return warmed, nil
}
