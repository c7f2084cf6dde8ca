package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the PostGIS extension and the tables the sequencer reads.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createExtensionQuery := `CREATE EXTENSION IF NOT EXISTS postgis;`

	createDepotsQuery := `
	CREATE TABLE IF NOT EXISTS depots (
		id UUID PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		coordinates GEOGRAPHY(Point, 4326),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		last_location GEOGRAPHY(Point, 4326),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		driver_id UUID REFERENCES drivers(id) ON DELETE SET NULL,
		customer_name TEXT NOT NULL,
		address_text TEXT NOT NULL DEFAULT '',
		coordinates GEOGRAPHY(Point, 4326),
		status TEXT NOT NULL DEFAULT 'pending',
		delivery_sequence INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_orders_tenant_driver_status
	ON orders(tenant_id, driver_id, status);
	`

	statements := []string{
		createExtensionQuery,
		createDepotsQuery,
		createDriversQuery,
		createOrdersQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedFromJSON populates depots, drivers and orders from a JSON seed file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	seed, err := ReadSeed(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range seed.Depots {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO depots (id, tenant_id, name, coordinates)
		VALUES ($1, $2, $3, `+pointExpr(4, 5)+`)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			coordinates = EXCLUDED.coordinates;
		`, d.ID, seed.TenantID, d.Name, d.Lng, d.Lat); err != nil {
			return fmt.Errorf("seed: insert depot id=%s: %w", d.ID, err)
		}
	}

	for _, d := range seed.Drivers {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO drivers (id, tenant_id, name, last_location)
		VALUES ($1, $2, $3, `+pointExpr(4, 5)+`)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			last_location = EXCLUDED.last_location;
		`, d.ID, seed.TenantID, d.Name, d.Lng, d.Lat); err != nil {
			return fmt.Errorf("seed: insert driver id=%s: %w", d.ID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO orders (
		id,
		tenant_id,
		driver_id,
		customer_name,
		address_text,
		coordinates,
		status,
		delivery_sequence
	)
	VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, `+pointExpr(6, 7)+`, $8, $9)
	ON CONFLICT (id) DO UPDATE
	SET driver_id = EXCLUDED.driver_id,
		customer_name = EXCLUDED.customer_name,
		address_text = EXCLUDED.address_text,
		coordinates = EXCLUDED.coordinates,
		status = EXCLUDED.status,
		delivery_sequence = EXCLUDED.delivery_sequence,
		updated_at = NOW();
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare order insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range seed.Orders {
		if _, err := stmt.ExecContext(ctx,
			o.ID, seed.TenantID, o.DriverID, o.CustomerName, o.AddressText,
			o.Lng, o.Lat, o.Status, o.DeliverySequence,
		); err != nil {
			return fmt.Errorf("seed: insert order id=%s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

// pointExpr builds a nullable geography point from lon/lat placeholders.
func pointExpr(lonArg, latArg int) string {
	return fmt.Sprintf(
		"CASE WHEN $%[1]d::float8 IS NULL OR $%[2]d::float8 IS NULL THEN NULL "+
			"ELSE ST_SetSRID(ST_MakePoint($%[1]d::float8, $%[2]d::float8), 4326)::geography END",
		lonArg, latArg,
	)
}
