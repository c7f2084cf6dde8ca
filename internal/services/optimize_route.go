package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/metrics"
	"route-sequencer-service/internal/platform/obs"
	"route-sequencer-service/internal/ports"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

var ErrNoSelection = fmt.Errorf("%w: must provide driver_id or order_ids", ErrInvalidArgument)

type OptimizeRouteRequest struct {
	TenantID  string
	DriverID  string
	OrderIDs  []string
	StartFrom string
	MaxSwaps  int
	// FallbackStart replaces domain.DefaultStart when set.
	FallbackStart *domain.Coordinates
}

type OptimizeRouteResult struct {
	Route    []domain.SequencedStop[domain.OrderPayload]
	Start    domain.StartLocation
	Stats    SequenceStats
	CacheHit bool
}

// OptimizeRoute loads the selected orders, resolves the start point and sequences them.
//
// Orders and start location are fetched concurrently. When a cache is supplied
// it is consulted before sequencing; cache errors are logged and otherwise ignored.
func OptimizeRoute(
	ctx context.Context,
	req OptimizeRouteRequest,
	repo ports.OrderRepository,
	locations ports.LocationProvider,
	cache ports.SequenceCache,
) (_ *OptimizeRouteResult, err error) {
	defer obs.Time(ctx, "services.OptimizeRoute")(&err)

	if strings.TrimSpace(req.TenantID) == "" {
		return nil, fmt.Errorf("optimize route: %w: tenant is required", ErrInvalidArgument)
	}
	driverID := strings.TrimSpace(req.DriverID)
	if driverID == "" && len(req.OrderIDs) == 0 {
		return nil, ErrNoSelection
	}

	var (
		orders []ports.OrderStop
		start  domain.StartLocation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		if len(req.OrderIDs) > 0 {
			orders, e = repo.ListOrdersByID(gctx, req.TenantID, req.OrderIDs)
		} else {
			orders, e = repo.ListOpenOrders(gctx, req.TenantID, driverID)
		}
		if e != nil {
			return fmt.Errorf("optimize route: list orders: %w", e)
		}
		return nil
	})
	g.Go(func() error {
		var e error
		fallback := domain.DefaultStart
		if req.FallbackStart != nil {
			fallback = *req.FallbackStart
		}
		start, e = resolveStart(gctx, req.TenantID, driverID, req.StartFrom, fallback, locations)
		if e != nil {
			return fmt.Errorf("optimize route: resolve start: %w", e)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return &OptimizeRouteResult{
			Route: []domain.SequencedStop[domain.OrderPayload]{},
			Start: start,
		}, nil
	}

	key := SequenceCacheKey(req.TenantID, start.Coordinates, orders, req.MaxSwaps)
	if cache != nil {
		entry, ok, cerr := cache.Get(ctx, key)
		if cerr != nil {
			log.Printf("sequence cache read failed: key=%s err=%v", key, cerr)
		}
		if ok {
			route, rerr := routeFromCache(orders, entry)
			if rerr == nil {
				metrics.SequenceCacheLookups.WithLabelValues("hit").Inc()
				return &OptimizeRouteResult{
					Route:    route,
					Start:    start,
					Stats:    statsFromCache(orders, entry),
					CacheHit: true,
				}, nil
			}
			log.Printf("sequence cache entry discarded: key=%s err=%v", key, rerr)
		}
		metrics.SequenceCacheLookups.WithLabelValues("miss").Inc()
	}

	route, stats, err := Sequence(&start.Coordinates, orders, SequenceOptions{MaxSwaps: req.MaxSwaps})
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}
	metrics.ObserveSequence(len(orders), stats.Swaps, stats.SwapBudgetExhausted)

	log.Printf(
		"route sequenced tenant=%s driver=%s stops=%d invalid=%d nn_m=%.0f refined_m=%.0f swaps=%d exhausted=%t",
		req.TenantID, driverID, len(orders), stats.InvalidStops,
		stats.ConstructedMeters, stats.RefinedMeters, stats.Swaps, stats.SwapBudgetExhausted,
	)

	if cache != nil {
		if err := cache.Put(ctx, key, cacheEntry(route, stats)); err != nil {
			log.Printf("sequence cache write failed: key=%s err=%v", key, err)
		}
	}

	return &OptimizeRouteResult{Route: route, Start: start, Stats: stats}, nil
}

// resolveStart picks the route start: the depot when asked for, otherwise the
// driver's last position, falling back to fallback when unknown.
func resolveStart(
	ctx context.Context,
	tenantID string,
	driverID string,
	startFrom string,
	fallback domain.Coordinates,
	locations ports.LocationProvider,
) (domain.StartLocation, error) {
	start := domain.StartLocation{Coordinates: fallback, Type: domain.StartFromDriver}
	if startFrom == domain.StartFromDepot {
		start.Type = domain.StartFromDepot
	}

	if locations == nil {
		return start, nil
	}

	var (
		c   *domain.Coordinates
		err error
	)
	switch {
	case startFrom == domain.StartFromDepot:
		c, err = locations.DepotLocation(ctx, tenantID)
	case driverID != "":
		c, err = locations.DriverLocation(ctx, tenantID, driverID)
	}
	if err != nil {
		return domain.StartLocation{}, err
	}

	if c != nil && c.Valid() {
		start.Coordinates = *c
	}
	return start, nil
}

// SequenceCacheKey digests everything Sequence depends on, in input order.
func SequenceCacheKey(tenantID string, start domain.Coordinates, stops []ports.OrderStop, maxSwaps int) string {
	h := sha256.New()
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	fmt.Fprintf(h, "%s|%s,%s|%d\n", tenantID, f(start.Lat), f(start.Lon), maxSwaps)
	for _, s := range stops {
		if s.Location == nil {
			fmt.Fprintf(h, "%s|-\n", s.ID)
			continue
		}
		fmt.Fprintf(h, "%s|%s,%s\n", s.ID, f(s.Location.Lat), f(s.Location.Lon))
	}
	return "seq:" + hex.EncodeToString(h.Sum(nil))
}

func cacheEntry(route []domain.SequencedStop[domain.OrderPayload], stats SequenceStats) ports.CachedSequence {
	ids := make([]string, 0, len(route))
	for _, s := range route {
		ids = append(ids, s.ID)
	}
	return ports.CachedSequence{
		OrderIDs:            ids,
		ConstructedMeters:   stats.ConstructedMeters,
		RefinedMeters:       stats.RefinedMeters,
		Swaps:               stats.Swaps,
		SwapBudgetExhausted: stats.SwapBudgetExhausted,
	}
}

// routeFromCache re-applies a cached ordering to freshly loaded orders so that
// payload changes made since caching are reflected.
func routeFromCache(
	orders []ports.OrderStop,
	entry ports.CachedSequence,
) ([]domain.SequencedStop[domain.OrderPayload], error) {
	if len(entry.OrderIDs) != len(orders) {
		return nil, fmt.Errorf("cached sequence has %d ids, want %d", len(entry.OrderIDs), len(orders))
	}

	byID := make(map[string]ports.OrderStop, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}

	route := make([]domain.SequencedStop[domain.OrderPayload], 0, len(orders))
	for _, id := range entry.OrderIDs {
		o, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("cached sequence references unknown order %q", id)
		}
		delete(byID, id)
		route = append(route, domain.SequencedStop[domain.OrderPayload]{Stop: o, DeliverySequence: len(route) + 1})
	}
	return route, nil
}

func statsFromCache(orders []ports.OrderStop, entry ports.CachedSequence) SequenceStats {
	stats := SequenceStats{
		ConstructedMeters:   entry.ConstructedMeters,
		RefinedMeters:       entry.RefinedMeters,
		Swaps:               entry.Swaps,
		SwapBudgetExhausted: entry.SwapBudgetExhausted,
	}
	for _, o := range orders {
		if o.Routable() {
			stats.ValidStops++
		} else {
			stats.InvalidStops++
		}
	}
	return stats
}
