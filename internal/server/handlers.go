package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"parking-facility/internal/config"
	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
)

type Handler struct {
	serviceName  string
	telemetry    *parking.TelemetryProvider
	validator    *RequestValidator
	facilityOpts []parking.Option

	mu       sync.RWMutex
	facility *parking.InstrumentedFacility
}

// NewHandler serves facility. facility may be nil until a client creates one
// with POST /api/facility; opts are applied to facilities created that way.
func NewHandler(serviceName string, telemetry *parking.TelemetryProvider, facility *parking.InstrumentedFacility, opts ...parking.Option) (*Handler, error) {
	v, err := NewRequestValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		serviceName:  serviceName,
		telemetry:    telemetry,
		validator:    v,
		facilityOpts: opts,
		facility:     facility,
	}, nil
}

// Current returns the facility currently being served, or nil.
func (h *Handler) Current() *parking.InstrumentedFacility {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facility
}

// Facility is Current without instrumentation.
func (h *Handler) Facility() *parking.Facility {
	if current := h.Current(); current != nil {
		return current.Facility
	}
	return nil
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) (*parking.InstrumentedFacility, bool) {
	facility := h.Current()
	if facility == nil {
		WriteError(r.Context(), w, http.StatusBadRequest, "Facility not created. Create the facility first")
		return nil, false
	}
	return facility, true
}

// decode reads the JSON body into req and validates it. It writes the error
// response itself and reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	ctx := r.Context()

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := h.validator.Validate(req); err != nil {
		var validationErrs ValidationErrors
		if errors.As(err, &validationErrs) {
			WriteValidationError(ctx, w, validationErrs)
			return false
		}
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, parking.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrAlreadyParked), errors.Is(err, parking.ErrNoCapacity):
		return http.StatusConflict
	case errors.Is(err, parking.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, parking.ErrInvalidVehicle),
		errors.Is(err, parking.ErrInvalidLevel),
		errors.Is(err, parking.ErrInvalidSize),
		errors.Is(err, parking.ErrInvalidSpotCount),
		errors.Is(err, parking.ErrInvalidRate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FacilityCreateRequest
	if !h.decode(w, r, &req) {
		return
	}

	layout := config.FacilityConfig{HourlyRate: req.HourlyRate}
	for _, level := range req.Levels {
		layout.Levels = append(layout.Levels, config.LevelConfig{
			Motorcycle: level.Motorcycle,
			Compact:    level.Compact,
			Large:      level.Large,
		})
	}

	facility, err := layout.Build(logging.Logger(), h.facilityOpts...)
	if err != nil {
		WriteError(ctx, w, statusCode(err), err.Error())
		return
	}

	instrumented, err := parking.NewInstrumentedFacility(facility, h.telemetry)
	if err != nil {
		logging.Error(ctx, "failed to instrument facility", "error", err)
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to create facility")
		return
	}

	h.mu.Lock()
	h.facility = instrumented
	h.mu.Unlock()

	logging.Info(ctx, "facility created", "levels", facility.Levels(), "hourly_rate", facility.HourlyRate())

	WriteSuccessStatus(ctx, w, http.StatusCreated, "Facility created successfully", FacilityResponse{
		Levels:     facility.Levels(),
		HourlyRate: facility.HourlyRate(),
		Capacity:   sizeMap(facility.Capacity()),
	})
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	facility, ok := h.current(w, r)
	if !ok {
		return
	}

	var req ParkVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}

	// The validator has already accepted the type.
	vehicleType, _ := parking.ParseVehicleType(req.VehicleType)

	ticket, err := facility.Park(ctx, parking.NewVehicle(req.Registration, req.Color, vehicleType))
	if err != nil {
		WriteError(ctx, w, statusCode(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked successfully", newTicketResponse(ticket))
}

func (h *Handler) UnparkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	facility, ok := h.current(w, r)
	if !ok {
		return
	}

	var req UnparkRequest
	if !h.decode(w, r, &req) {
		return
	}

	method, _ := parking.ParsePaymentMethod(req.PaymentMethod)

	settlement, err := facility.UnparkAndPay(ctx, req.Registration, method)
	if err != nil {
		WriteError(ctx, w, statusCode(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Spot released and payment settled", newSettlementResponse(settlement))
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	facility, ok := h.current(w, r)
	if !ok {
		return
	}

	WriteSuccess(ctx, w, "Availability retrieved successfully", sizeMap(facility.Availability(ctx)))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	facility, ok := h.current(w, r)
	if !ok {
		return
	}

	response := StatusResponse{
		ActiveTickets: len(facility.ActiveTickets()),
	}

	for number, spots := range facility.Status() {
		level := LevelStatus{Level: number, Spots: make([]SpotResponse, 0, len(spots))}
		for _, spot := range spots {
			level.Spots = append(level.Spots, SpotResponse{
				SpotID:       int(spot.ID),
				Size:         spot.Size.String(),
				Occupied:     spot.Occupied,
				Registration: spot.Registration,
				Color:        spot.Color,
			})
			response.Capacity++
			if spot.Occupied {
				response.Occupied++
			} else {
				level.Available++
			}
		}
		response.Levels = append(response.Levels, level)
	}
	response.Available = response.Capacity - response.Occupied

	WriteSuccess(ctx, w, "Status retrieved successfully", response)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	facility, ok := h.current(w, r)
	if !ok {
		return
	}

	registration := chi.URLParam(r, "registration")
	if registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration number is required")
		return
	}

	ticket, found := facility.Ticket(ctx, registration)
	if !found {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	WriteSuccess(ctx, w, "Ticket found", newTicketResponse(ticket))
}
