package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"route-sequencer-service/internal/domain"
	"strings"

	"github.com/google/uuid"
)

// Seed is the JSON document accepted by SeedFromJSON and NewMemoryRepositoryFromSeed.
type Seed struct {
	TenantID string       `json:"tenant_id"`
	Depots   []DepotSeed  `json:"depots"`
	Drivers  []DriverSeed `json:"drivers"`
	Orders   []OrderSeed  `json:"orders"`
}

type DepotSeed struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

type DriverSeed struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

type OrderSeed struct {
	ID               string   `json:"id"`
	DriverID         string   `json:"driver_id"`
	CustomerName     string   `json:"customer_name"`
	AddressText      string   `json:"address_text"`
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
	Status           string   `json:"status"`
	DeliverySequence *int     `json:"delivery_sequence"`
}

// ReadSeed loads and normalizes a seed file. Missing ids are generated and
// missing statuses default to pending.
func ReadSeed(jsonPath string) (*Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var seed Seed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return nil, fmt.Errorf("seed: parse json: %w", err)
	}

	if err := seed.normalize(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Seed) normalize() error {
	s.TenantID = strings.TrimSpace(s.TenantID)
	if s.TenantID == "" {
		return fmt.Errorf("seed: tenant_id cannot be empty")
	}

	for i := range s.Depots {
		if s.Depots[i].ID == "" {
			s.Depots[i].ID = uuid.NewString()
		}
	}
	for i := range s.Drivers {
		if s.Drivers[i].ID == "" {
			s.Drivers[i].ID = uuid.NewString()
		}
	}
	for i := range s.Orders {
		o := &s.Orders[i]
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if o.Status == "" {
			o.Status = domain.OrderStatusPending
		}
		if strings.TrimSpace(o.CustomerName) == "" {
			return fmt.Errorf("seed: order at index %d: customer_name cannot be empty", i+1)
		}
		if o.DeliverySequence != nil && *o.DeliverySequence < 1 {
			return fmt.Errorf("seed: order at index %d: invalid delivery_sequence %d", i+1, *o.DeliverySequence)
		}
	}
	return nil
}
