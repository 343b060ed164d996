package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-facility/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Upper bounds keep a single request from allocating an unbounded facility:
// at most 100 levels of at most 10000 spots per size class.
type LevelRequest struct {
	Motorcycle int `json:"motorcycle" validate:"gte=0,lte=10000"`
	Compact    int `json:"compact" validate:"gte=0,lte=10000"`
	Large      int `json:"large" validate:"gte=0,lte=10000"`
}

type FacilityCreateRequest struct {
	HourlyRate float64        `json:"hourly_rate" validate:"gte=0"`
	Levels     []LevelRequest `json:"levels" validate:"required,min=1,max=100,dive"`
}

type ParkVehicleRequest struct {
	Registration string `json:"registration" validate:"required,max=32"`
	Color        string `json:"color" validate:"max=32"`
	VehicleType  string `json:"vehicle_type" validate:"required,vehicle_type"`
}

type UnparkRequest struct {
	Registration  string `json:"registration" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,payment_method"`
}

type FacilityResponse struct {
	Levels     int            `json:"levels"`
	HourlyRate float64        `json:"hourly_rate"`
	Capacity   map[string]int `json:"capacity"`
}

type TicketResponse struct {
	TicketID     string    `json:"ticket_id"`
	SpotID       int       `json:"spot_id"`
	Level        int       `json:"level"`
	Registration string    `json:"registration"`
	VehicleType  string    `json:"vehicle_type"`
	EntryTime    time.Time `json:"entry_time"`
}

type SettlementResponse struct {
	Ticket          TicketResponse `json:"ticket"`
	ExitTime        time.Time      `json:"exit_time"`
	DurationSeconds float64        `json:"duration_seconds"`
	Fee             float64        `json:"fee"`
	PaymentMethod   string         `json:"payment_method"`
}

type SpotResponse struct {
	SpotID       int    `json:"spot_id"`
	Size         string `json:"size"`
	Occupied     bool   `json:"occupied"`
	Registration string `json:"registration,omitempty"`
	Color        string `json:"color,omitempty"`
}

type LevelStatus struct {
	Level     int            `json:"level"`
	Available int            `json:"available"`
	Spots     []SpotResponse `json:"spots"`
}

type StatusResponse struct {
	Capacity      int           `json:"capacity"`
	Occupied      int           `json:"occupied"`
	Available     int           `json:"available"`
	Levels        []LevelStatus `json:"levels"`
	ActiveTickets int           `json:"active_tickets"`
}

func newTicketResponse(ticket parking.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:     ticket.ID,
		SpotID:       int(ticket.SpotID),
		Level:        ticket.Level,
		Registration: ticket.VehicleID,
		VehicleType:  ticket.VehicleType.String(),
		EntryTime:    ticket.EntryTime,
	}
}

func newSettlementResponse(settlement parking.Settlement) SettlementResponse {
	return SettlementResponse{
		Ticket:          newTicketResponse(settlement.Ticket),
		ExitTime:        settlement.ExitTime,
		DurationSeconds: settlement.Duration.Seconds(),
		Fee:             settlement.Fee,
		PaymentMethod:   settlement.Method.String(),
	}
}

func sizeMap(counts map[parking.SizeClass]int) map[string]int {
	out := make(map[string]int, len(parking.SizeClasses))
	for _, size := range parking.SizeClasses {
		out[size.String()] = counts[size]
	}
	return out
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteSuccessStatus(ctx, w, http.StatusOK, message, data)
}

// WriteSuccessStatus is WriteSuccess with an explicit 2xx status.
func WriteSuccessStatus(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}

func WriteValidationError(ctx context.Context, w http.ResponseWriter, errs ValidationErrors) {
	WriteJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Error:   "Validation failed",
		Details: errs,
		Meta:    extractMeta(ctx),
	})
}
