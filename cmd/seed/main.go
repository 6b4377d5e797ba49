// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"stockwise/internal/core/id"
	"stockwise/internal/infrastructure/storage/postgres"
	"stockwise/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	supplierIDs, err := seedSuppliers(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed suppliers", "error", err)
	}

	if err := seedProducts(ctx, pool, log, supplierIDs); err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedSuppliers(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (map[string]id.ID, error) {
	suppliers := []struct {
		code  string
		name  string
		email string
		phone string
	}{
		{"SUP-001", "Beauty Wholesale Ltd", "orders@beautywholesale.example", "+1-555-0101"},
		{"SUP-002", "Prestige Cosmetics Supply", "sales@prestigecs.example", "+1-555-0102"},
		{"SUP-003", "Salon Essentials Co", "contact@salonessentials.example", "+1-555-0103"},
	}

	ids := make(map[string]id.ID, len(suppliers))
	for _, s := range suppliers {
		supplierID := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_suppliers (id, code, name, contact_email, phone, is_active, version)
			VALUES ($1, $2, $3, $4, $5, true, 1)
			ON CONFLICT (code) DO NOTHING
		`, supplierID, s.code, s.name, s.email, s.phone)
		if err != nil {
			return nil, fmt.Errorf("insert supplier %s: %w", s.code, err)
		}

		// Re-running the seeder reuses the existing row
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM cat_suppliers WHERE code = $1`, s.code,
			).Scan(&supplierID)
			if err != nil {
				return nil, fmt.Errorf("fetch existing supplier %s: %w", s.code, err)
			}
		}

		ids[s.code] = supplierID
	}

	log.Infow("suppliers seeded", "count", len(suppliers))
	return ids, nil
}

func seedProducts(ctx context.Context, pool *postgres.Pool, log *logger.Logger, supplierIDs map[string]id.ID) error {
	products := []struct {
		code         string
		name         string
		sku          string
		unit         string
		productType  string
		minQuantity  int64
		unitCost     string
		supplierCode string
	}{
		{"PRD-001", "Moisturizing Shampoo 250ml", "SHMP-250", "pcs", "retail", 10, "8.50", "SUP-001"},
		{"PRD-002", "Repair Conditioner 250ml", "COND-250", "pcs", "retail", 10, "9.20", "SUP-001"},
		{"PRD-003", "Argan Hair Oil 100ml", "OIL-100", "pcs", "retail", 5, "14.00", "SUP-002"},
		{"PRD-004", "Hair Color Blonde 7.0", "CLR-070", "pcs", "backbar", 12, "6.75", "SUP-002"},
		{"PRD-005", "Hair Color Brown 4.0", "CLR-040", "pcs", "backbar", 12, "6.75", "SUP-002"},
		{"PRD-006", "Developer 6% 1L", "DEV-060", "pcs", "backbar", 8, "5.40", "SUP-002"},
		{"PRD-007", "Bleaching Powder 500g", "BLCH-500", "pcs", "backbar", 6, "11.30", "SUP-002"},
		{"PRD-008", "Disposable Gloves (100)", "GLV-100", "pack", "consumable", 4, "7.90", "SUP-003"},
		{"PRD-009", "Foil Roll 100m", "FOIL-100", "pcs", "consumable", 3, "4.25", "SUP-003"},
		{"PRD-010", "Neck Strips (100)", "NSTR-100", "pack", "consumable", 4, "3.10", "SUP-003"},
	}

	for _, p := range products {
		unitCost, err := decimal.NewFromString(p.unitCost)
		if err != nil {
			return fmt.Errorf("parse unit cost for %s: %w", p.sku, err)
		}

		var supplierID any
		if sid, ok := supplierIDs[p.supplierCode]; ok {
			supplierID = sid
		}

		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (
				id, code, name, sku, unit, product_type,
				stock_quantity, min_quantity, unit_cost,
				default_supplier_id, track_stock, is_active, version
			)
			VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, true, true, 1)
			ON CONFLICT (sku) DO NOTHING
		`, id.New(), p.code, p.name, p.sku, p.unit, p.productType,
			p.minQuantity, unitCost, supplierID)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.sku, err)
		}
	}

	log.Infow("products seeded", "count", len(products))
	return nil
}
