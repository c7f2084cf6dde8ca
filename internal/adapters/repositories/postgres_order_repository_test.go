package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/db"
	"route-sequencer-service/internal/ports"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL (a PostGIS-enabled database) and
// prepares the schema. The test is skipped when the variable is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn))
	return conn
}

func TestPostgresOrderRepository(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	// A fresh tenant isolates this run from earlier ones.
	tenant := "test-" + uuid.NewString()
	driverID := uuid.NewString()
	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString()}

	path := writeSeed(t, fmt.Sprintf(`{
		"tenant_id": %q,
		"depots": [{"id": %q, "name": "Main", "lat": -34.8886, "lng": -56.1872}],
		"drivers": [{"id": %q, "name": "Ana", "lat": -34.9055, "lng": -56.1913}],
		"orders": [
			{"id": %q, "driver_id": %q, "customer_name": "A", "lat": -34.9058, "lng": -56.1860},
			{"id": %q, "driver_id": %q, "customer_name": "B", "lat": -34.8940, "lng": -56.1640},
			{"id": %q, "driver_id": %q, "customer_name": "C"},
			{"id": %q, "driver_id": %q, "customer_name": "D", "lat": -34.91, "lng": -56.15, "status": "delivered"}
		]
	}`, tenant, uuid.NewString(), driverID,
		ids[0], driverID, ids[1], driverID, ids[2], driverID, ids[3], driverID))
	require.NoError(t, SeedFromJSON(ctx, conn, path))

	repo := NewPostgresOrderRepository(conn)

	open, err := repo.ListOpenOrders(ctx, tenant, driverID)
	require.NoError(t, err)
	require.Len(t, open, 3)
	// Seeded in one transaction, so created_at ties; look orders up by id.
	byOpenID := make(map[string]ports.OrderStop, len(open))
	for _, o := range open {
		byOpenID[o.ID] = o
	}
	assert.Nil(t, byOpenID[ids[2]].Location)
	require.NotNil(t, byOpenID[ids[0]].Location)
	assert.InDelta(t, -34.9058, byOpenID[ids[0]].Location.Lat, 1e-9)
	assert.InDelta(t, -56.1860, byOpenID[ids[0]].Location.Lon, 1e-9)
	assert.Equal(t, "A", byOpenID[ids[0]].Payload.CustomerName)

	byID, err := repo.ListOrdersByID(ctx, tenant, []string{ids[1], ids[0], uuid.NewString()})
	require.NoError(t, err)
	require.Len(t, byID, 2)
	assert.Equal(t, ids[1], byID[0].ID)
	assert.Equal(t, ids[0], byID[1].ID)

	otherTenant, err := repo.ListOrdersByID(ctx, "someone-else", ids)
	require.NoError(t, err)
	assert.Empty(t, otherTenant)

	driverPos, err := repo.DriverLocation(ctx, tenant, driverID)
	require.NoError(t, err)
	require.NotNil(t, driverPos)
	assert.InDelta(t, -34.9055, driverPos.Lat, 1e-9)

	depot, err := repo.DepotLocation(ctx, tenant)
	require.NoError(t, err)
	require.NotNil(t, depot)

	missing, err := repo.DepotLocation(ctx, "someone-else-"+uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.SaveSequences(ctx, tenant, []domain.SequenceAssignment{
		{OrderID: ids[0], DeliverySequence: 1},
		{OrderID: uuid.NewString(), DeliverySequence: 2},
	})
	require.True(t, errors.Is(err, ports.ErrNotFound), "err = %v", err)

	sheet, err := repo.LoadingSheet(ctx, tenant, driverID)
	require.NoError(t, err)
	for _, row := range sheet {
		assert.Nil(t, row.DeliverySequence, "rolled back write leaked into %s", row.OrderID)
	}

	require.NoError(t, repo.SaveSequences(ctx, tenant, []domain.SequenceAssignment{
		{OrderID: ids[0], DeliverySequence: 1},
		{OrderID: ids[1], DeliverySequence: 2},
	}))

	sheet, err = repo.LoadingSheet(ctx, tenant, driverID)
	require.NoError(t, err)
	require.Len(t, sheet, 3)
	assert.Equal(t, ids[1], sheet[0].OrderID)
	assert.Equal(t, ids[0], sheet[1].OrderID)
	assert.Equal(t, ids[2], sheet[2].OrderID)
	assert.Equal(t, 3, sheet[2].LoadPosition)
	assert.Nil(t, sheet[2].DeliverySequence)
}
