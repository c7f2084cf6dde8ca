package handlers

import (
	"net/http"
	"route-sequencer-service/internal/api/dto"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/ports"
	"route-sequencer-service/internal/services"
	"strings"
)

// RouteHandler exposes route optimization, sequence persistence and loading sheets.
type RouteHandler struct {
	Repo      ports.OrderRepository
	Locations ports.LocationProvider
	Store     ports.SequenceStore
	// Cache is optional.
	Cache         ports.SequenceCache
	MaxSwaps      int
	FallbackStart *domain.Coordinates
}

// Optimize sequences a driver's open orders, or an explicit order list,
// from the driver's position or the tenant's depot.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req dto.OptimizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	startFrom := strings.TrimSpace(req.StartFrom)
	if startFrom != "" && startFrom != domain.StartFromDriver && startFrom != domain.StartFromDepot {
		writeError(w, r, http.StatusBadRequest, `start_from must be "driver" or "depot"`)
		return
	}

	result, err := services.OptimizeRoute(r.Context(), services.OptimizeRouteRequest{
		TenantID:      tenant,
		DriverID:      req.DriverID,
		OrderIDs:      req.OrderIDs,
		StartFrom:     startFrom,
		MaxSwaps:      h.MaxSwaps,
		FallbackStart: h.FallbackStart,
	}, h.Repo, h.Locations, h.Cache)
	if err != nil {
		writeServiceError(w, r, err, "optimize route", "optimization failed")
		return
	}

	res := dto.OptimizeResponse{
		Route: make([]dto.RouteStopResponse, 0, len(result.Route)),
		StartLocation: dto.StartLocationResponse{
			Lat:  result.Start.Lat,
			Lng:  result.Start.Lon,
			Type: result.Start.Type,
		},
		Stats: dto.SequenceStatsResponse{
			ValidStops:          result.Stats.ValidStops,
			InvalidStops:        result.Stats.InvalidStops,
			ConstructedMeters:   result.Stats.ConstructedMeters,
			RefinedMeters:       result.Stats.RefinedMeters,
			Swaps:               result.Stats.Swaps,
			SwapBudgetExhausted: result.Stats.SwapBudgetExhausted,
			CacheHit:            result.CacheHit,
		},
	}
	for _, s := range result.Route {
		stop := dto.RouteStopResponse{
			ID:               s.ID,
			CustomerName:     s.Payload.CustomerName,
			AddressText:      s.Payload.AddressText,
			Status:           s.Payload.Status,
			DeliverySequence: s.DeliverySequence,
		}
		if s.Location != nil {
			lat, lng := s.Location.Lat, s.Location.Lon
			stop.Lat, stop.Lng = &lat, &lng
		}
		res.Route = append(res.Route, stop)
	}

	writeJSON(w, r, http.StatusOK, res)
}

// SaveSequence persists a chosen delivery order.
func (h *RouteHandler) SaveSequence(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req dto.SaveSequenceRequest
	if err := decodeJSON(r, &req); err != nil || req.Sequences == nil {
		writeError(w, r, http.StatusBadRequest, "invalid sequences format")
		return
	}

	assignments := make([]domain.SequenceAssignment, 0, len(*req.Sequences))
	for _, item := range *req.Sequences {
		assignments = append(assignments, domain.SequenceAssignment{
			OrderID:          item.ID,
			DeliverySequence: item.DeliverySequence,
		})
	}

	if err := services.SaveSequence(r.Context(), tenant, assignments, h.Store); err != nil {
		writeServiceError(w, r, err, "save sequence", "failed to update sequences")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.MessageResponse{Message: "sequence updated successfully"})
}

// LoadingSheet lists the driver's open orders in truck loading order.
func (h *RouteHandler) LoadingSheet(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	driverID := strings.TrimSpace(r.URL.Query().Get("driver_id"))
	if driverID == "" {
		writeError(w, r, http.StatusBadRequest, "driver_id is required")
		return
	}

	entries, err := services.DriverLoadingSheet(r.Context(), tenant, driverID, h.Repo)
	if err != nil {
		writeServiceError(w, r, err, "loading sheet", "error generating loading sheet")
		return
	}

	res := dto.LoadingSheetResponse{
		DriverID: driverID,
		Items:    make([]dto.LoadingSheetItem, 0, len(entries)),
	}
	for _, e := range entries {
		res.Items = append(res.Items, dto.LoadingSheetItem{
			LoadPosition:     e.LoadPosition,
			DeliverySequence: e.DeliverySequence,
			ID:               e.OrderID,
			CustomerName:     e.CustomerName,
			AddressText:      e.AddressText,
			Status:           e.Status,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
