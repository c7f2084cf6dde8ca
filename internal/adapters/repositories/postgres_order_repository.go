package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/obs"
	"route-sequencer-service/internal/ports"
)

// PostgreSQL/PostGIS-backed implementation of the OrderRepository,
// LocationProvider and SequenceStore ports.
type PostgresOrderRepository struct{ DB *sql.DB }

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

const orderColumns = `
		id::text,
		customer_name,
		address_text,
		status,
		ST_Y(coordinates::geometry) AS lat,
		ST_X(coordinates::geometry) AS lng
`

// Return the tenant's orders with the given ids, in the order the ids were given.
func (s *PostgresOrderRepository) ListOrdersByID(
	ctx context.Context,
	tenantID string,
	orderIDs []string,
) (_ []ports.OrderStop, err error) {
	defer obs.Time(ctx, "orders.ListOrdersByID")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres order repository: DB is nil")
	}
	if len(orderIDs) == 0 {
		return []ports.OrderStop{}, nil
	}

	query := `
	SELECT` + orderColumns + `
	FROM orders
	WHERE id::text = ANY($1::text[])
		AND tenant_id = $2
	ORDER BY array_position($1::text[], id::text);
	`
	rows, err := s.DB.QueryContext(ctx, query, orderIDs, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list orders by id: query orders table: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows, "list orders by id")
}

// Return the driver's pending and in-progress orders, oldest first.
func (s *PostgresOrderRepository) ListOpenOrders(
	ctx context.Context,
	tenantID string,
	driverID string,
) (_ []ports.OrderStop, err error) {
	defer obs.Time(ctx, "orders.ListOpenOrders")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres order repository: DB is nil")
	}

	query := `
	SELECT` + orderColumns + `
	FROM orders
	WHERE driver_id::text = $1
		AND tenant_id = $2
		AND status IN ($3, $4)
	ORDER BY created_at, id;
	`
	rows, err := s.DB.QueryContext(ctx, query,
		driverID, tenantID, domain.OrderStatusPending, domain.OrderStatusInProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("list open orders: query orders table: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows, "list open orders")
}

func scanOrders(rows *sql.Rows, op string) ([]ports.OrderStop, error) {
	orders := make([]ports.OrderStop, 0, 32)
	for rows.Next() {
		var (
			o        ports.OrderStop
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(
			&o.ID,
			&o.Payload.CustomerName,
			&o.Payload.AddressText,
			&o.Payload.Status,
			&lat,
			&lng,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		o.Location = nullableCoordinates(lat, lng)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return orders, nil
}

// Return open orders with the last stop first (delivery_sequence DESC NULLS LAST).
func (s *PostgresOrderRepository) LoadingSheet(
	ctx context.Context,
	tenantID string,
	driverID string,
) (_ []domain.LoadingSheetEntry, err error) {
	defer obs.Time(ctx, "orders.LoadingSheet")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres order repository: DB is nil")
	}

	query := `
	SELECT
		id::text,
		delivery_sequence,
		customer_name,
		address_text,
		status
	FROM orders
	WHERE tenant_id = $1
		AND driver_id::text = $2
		AND status IN ($3, $4)
	ORDER BY delivery_sequence DESC NULLS LAST, created_at, id;
	`
	rows, err := s.DB.QueryContext(ctx, query,
		tenantID, driverID, domain.OrderStatusPending, domain.OrderStatusInProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("loading sheet: query orders table: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LoadingSheetEntry, 0, 32)
	for rows.Next() {
		var (
			e   domain.LoadingSheetEntry
			seq sql.NullInt64
		)
		if err := rows.Scan(&e.OrderID, &seq, &e.CustomerName, &e.AddressText, &e.Status); err != nil {
			return nil, fmt.Errorf("loading sheet: scan row: %w", err)
		}
		if seq.Valid {
			v := int(seq.Int64)
			e.DeliverySequence = &v
		}
		e.LoadPosition = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading sheet: row iteration: %w", err)
	}

	return entries, nil
}

// Return the driver's last reported position, or nil when none is recorded.
func (s *PostgresOrderRepository) DriverLocation(
	ctx context.Context,
	tenantID string,
	driverID string,
) (*domain.Coordinates, error) {
	return s.queryPoint(ctx, "driver location", `
	SELECT ST_Y(last_location::geometry), ST_X(last_location::geometry)
	FROM drivers
	WHERE id::text = $1
		AND tenant_id = $2;
	`, driverID, tenantID)
}

// Return the tenant's first depot position, or nil when the tenant has none.
func (s *PostgresOrderRepository) DepotLocation(ctx context.Context, tenantID string) (*domain.Coordinates, error) {
	return s.queryPoint(ctx, "depot location", `
	SELECT ST_Y(coordinates::geometry), ST_X(coordinates::geometry)
	FROM depots
	WHERE tenant_id = $1
	ORDER BY created_at, id
	LIMIT 1;
	`, tenantID)
}

func (s *PostgresOrderRepository) queryPoint(
	ctx context.Context,
	op string,
	query string,
	args ...any,
) (_ *domain.Coordinates, err error) {
	defer obs.Time(ctx, "locations."+op)(&err)

	if s.DB == nil {
		return nil, errors.New("postgres order repository: DB is nil")
	}

	var lat, lng sql.NullFloat64
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&lat, &lng)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	return nullableCoordinates(lat, lng), nil
}

// Store delivery sequences in a single transaction.
func (s *PostgresOrderRepository) SaveSequences(
	ctx context.Context,
	tenantID string,
	assignments []domain.SequenceAssignment,
) (err error) {
	defer obs.Time(ctx, "orders.SaveSequences")(&err)

	if s.DB == nil {
		return errors.New("postgres order repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save sequences: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	UPDATE orders
	SET delivery_sequence = $1,
		updated_at = NOW()
	WHERE id::text = $2
		AND tenant_id = $3;
	`)
	if err != nil {
		return fmt.Errorf("save sequences: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		res, err := stmt.ExecContext(ctx, a.DeliverySequence, a.OrderID, tenantID)
		if err != nil {
			return fmt.Errorf("save sequences order=%q: %w", a.OrderID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("save sequences order=%q: rows affected: %w", a.OrderID, err)
		}
		if n == 0 {
			return fmt.Errorf("save sequences order=%q: %w", a.OrderID, ports.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save sequences commit: %w", err)
	}

	return nil
}

func nullableCoordinates(lat, lng sql.NullFloat64) *domain.Coordinates {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lon: lng.Float64}
}
