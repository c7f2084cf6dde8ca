package repositories

import (
	"context"
	"os"
	"path/filepath"
	"route-sequencer-service/internal/domain"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestReadSeedNormalizes(t *testing.T) {
	path := writeSeed(t, `{
		"tenant_id": " demo ",
		"depots": [{"name": "Main", "lat": -34.88, "lng": -56.18}],
		"drivers": [{"id": "d1", "name": "Ana", "lat": null, "lng": null}],
		"orders": [
			{"id": "o1", "driver_id": "d1", "customer_name": "Bea", "lat": -34.9, "lng": -56.1},
			{"driver_id": "d1", "customer_name": "Caro", "status": "in_progress", "delivery_sequence": 2}
		]
	}`)

	seed, err := ReadSeed(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seed.TenantID != "demo" {
		t.Fatalf("tenant = %q, want demo", seed.TenantID)
	}
	if _, err := uuid.Parse(seed.Depots[0].ID); err != nil {
		t.Fatalf("generated depot id %q is not a uuid", seed.Depots[0].ID)
	}
	if seed.Orders[0].Status != domain.OrderStatusPending {
		t.Fatalf("default status = %q", seed.Orders[0].Status)
	}
	if _, err := uuid.Parse(seed.Orders[1].ID); err != nil {
		t.Fatalf("generated order id %q is not a uuid", seed.Orders[1].ID)
	}
	if seed.Orders[1].Lat != nil {
		t.Fatalf("missing lat decoded as %v", *seed.Orders[1].Lat)
	}
}

func TestReadSeedRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no tenant", `{"orders": []}`, "tenant_id"},
		{"no customer", `{"tenant_id": "t", "orders": [{"id": "o"}]}`, "customer_name"},
		{"bad sequence", `{"tenant_id": "t", "orders": [{"customer_name": "x", "delivery_sequence": 0}]}`, "delivery_sequence"},
		{"bad json", `{`, "parse json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSeed(writeSeed(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := ReadSeed(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDemoSeedLoadsIntoMemory(t *testing.T) {
	seed, err := ReadSeed(filepath.Join("..", "..", "..", "data", "seeds", "orders.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := NewMemoryRepositoryFromSeed(seed)
	ctx := context.Background()

	driverID := seed.Drivers[0].ID
	open, err := repo.ListOpenOrders(ctx, seed.TenantID, driverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(open) != 5 {
		t.Fatalf("open orders = %d, want 5", len(open))
	}

	if c, _ := repo.DepotLocation(ctx, seed.TenantID); c == nil {
		t.Fatalf("demo depot has no location")
	}
	if c, _ := repo.DriverLocation(ctx, seed.TenantID, seed.Drivers[1].ID); c != nil {
		t.Fatalf("driver without position resolved to %v", c)
	}
}
