package repositories

import (
	"context"
	"fmt"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/ports"
	"sort"
	"sync"
)

type memoryOrder struct {
	tenantID         string
	driverID         string
	stop             ports.OrderStop
	deliverySequence *int
}

// MemoryRepository is an in-process implementation of the order, location and
// sequence ports. It is used when no database is configured and in tests.
// Safe for concurrent use.
type MemoryRepository struct {
	mu      sync.RWMutex
	orders  []*memoryOrder
	// drivers is keyed by driverKey; driver ids are only unique within a tenant.
	drivers map[string]*domain.Coordinates
	depots  map[string][]*domain.Coordinates
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		drivers: make(map[string]*domain.Coordinates),
		depots:  make(map[string][]*domain.Coordinates),
	}
}

// NewMemoryRepositoryFromSeed builds a repository holding the seed's records.
func NewMemoryRepositoryFromSeed(seed *Seed) *MemoryRepository {
	m := NewMemoryRepository()
	for _, d := range seed.Depots {
		m.AddDepot(seed.TenantID, domain.NewCoordinates(d.Lat, d.Lng))
	}
	for _, d := range seed.Drivers {
		m.SetDriverLocation(seed.TenantID, d.ID, domain.NewCoordinates(d.Lat, d.Lng))
	}
	for _, o := range seed.Orders {
		m.AddOrder(seed.TenantID, o.DriverID, ports.OrderStop{
			ID:       o.ID,
			Location: domain.NewCoordinates(o.Lat, o.Lng),
			Payload: domain.OrderPayload{
				CustomerName: o.CustomerName,
				AddressText:  o.AddressText,
				Status:       o.Status,
			},
		}, o.DeliverySequence)
	}
	return m
}

func (m *MemoryRepository) AddOrder(tenantID, driverID string, stop ports.OrderStop, deliverySequence *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, &memoryOrder{
		tenantID:         tenantID,
		driverID:         driverID,
		stop:             stop,
		deliverySequence: deliverySequence,
	})
}

func (m *MemoryRepository) AddDepot(tenantID string, location *domain.Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depots[tenantID] = append(m.depots[tenantID], location)
}

func (m *MemoryRepository) SetDriverLocation(tenantID, driverID string, location *domain.Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driverKey(tenantID, driverID)] = location
}

func driverKey(tenantID, driverID string) string {
	return tenantID + "/" + driverID
}

// DeliverySequence returns the stored sequence for an order, if any.
func (m *MemoryRepository) DeliverySequence(tenantID, orderID string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.tenantID == tenantID && o.stop.ID == orderID && o.deliverySequence != nil {
			return *o.deliverySequence, true
		}
	}
	return 0, false
}

func (m *MemoryRepository) ListOrdersByID(_ context.Context, tenantID string, orderIDs []string) ([]ports.OrderStop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ports.OrderStop, 0, len(orderIDs))
	seen := make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		for _, o := range m.orders {
			if o.tenantID == tenantID && o.stop.ID == id {
				out = append(out, o.stop)
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryRepository) ListOpenOrders(_ context.Context, tenantID, driverID string) ([]ports.OrderStop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ports.OrderStop, 0)
	for _, o := range m.orders {
		if o.tenantID == tenantID && o.driverID == driverID && isOpen(o.stop.Payload.Status) {
			out = append(out, o.stop)
		}
	}
	return out, nil
}

func (m *MemoryRepository) LoadingSheet(_ context.Context, tenantID, driverID string) ([]domain.LoadingSheetEntry, error) {
	m.mu.RLock()
	open := make([]*memoryOrder, 0)
	for _, o := range m.orders {
		if o.tenantID == tenantID && o.driverID == driverID && isOpen(o.stop.Payload.Status) {
			open = append(open, o)
		}
	}
	m.mu.RUnlock()

	// delivery_sequence DESC NULLS LAST; insertion order breaks ties.
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i].deliverySequence, open[j].deliverySequence
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})

	out := make([]domain.LoadingSheetEntry, 0, len(open))
	for _, o := range open {
		var seq *int
		if o.deliverySequence != nil {
			v := *o.deliverySequence
			seq = &v
		}
		out = append(out, domain.LoadingSheetEntry{
			LoadPosition:     len(out) + 1,
			DeliverySequence: seq,
			OrderID:          o.stop.ID,
			CustomerName:     o.stop.Payload.CustomerName,
			AddressText:      o.stop.Payload.AddressText,
			Status:           o.stop.Payload.Status,
		})
	}
	return out, nil
}

func (m *MemoryRepository) DriverLocation(_ context.Context, tenantID, driverID string) (*domain.Coordinates, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loc := m.drivers[driverKey(tenantID, driverID)]
	if loc == nil {
		return nil, nil
	}
	c := *loc
	return &c, nil
}

func (m *MemoryRepository) DepotLocation(_ context.Context, tenantID string) (*domain.Coordinates, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	depots := m.depots[tenantID]
	if len(depots) == 0 || depots[0] == nil {
		return nil, nil
	}
	c := *depots[0]
	return &c, nil
}

// SaveSequences applies all assignments or none of them.
func (m *MemoryRepository) SaveSequences(_ context.Context, tenantID string, assignments []domain.SequenceAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	targets := make([]*memoryOrder, 0, len(assignments))
	for _, a := range assignments {
		var found *memoryOrder
		for _, o := range m.orders {
			if o.tenantID == tenantID && o.stop.ID == a.OrderID {
				found = o
				break
			}
		}
		if found == nil {
			return fmt.Errorf("save sequences order=%q: %w", a.OrderID, ports.ErrNotFound)
		}
		targets = append(targets, found)
	}

	for i, o := range targets {
		seq := assignments[i].DeliverySequence
		o.deliverySequence = &seq
	}
	return nil
}

func isOpen(status string) bool {
	return status == domain.OrderStatusPending || status == domain.OrderStatusInProgress
}
