package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedFacility struct {
	*Facility
	telemetry *TelemetryProvider

	// Metrics
	parkOperations    metric.Int64Counter
	unparkOperations  metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	totalSpotsGauge   metric.Int64UpDownCounter
	feesCollected     metric.Float64Counter
}

func NewInstrumentedFacility(facility *Facility, telemetry *TelemetryProvider) (*InstrumentedFacility, error) {
	meter := telemetry.Meter()

	parkOperations, err := meter.Int64Counter("parking_operations_total",
		metric.WithDescription("Total number of park operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	unparkOperations, err := meter.Int64Counter("unpark_operations_total",
		metric.WithDescription("Total number of unpark-and-pay operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("facility_occupancy",
		metric.WithDescription("Current number of occupied spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of facility operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	totalSpotsGauge, err := meter.Int64UpDownCounter("facility_total_spots",
		metric.WithDescription("Total number of spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	feesCollected, err := meter.Float64Counter("payments_collected_total",
		metric.WithDescription("Sum of settled parking fees"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, err
	}

	ifc := &InstrumentedFacility{
		Facility:          facility,
		telemetry:         telemetry,
		parkOperations:    parkOperations,
		unparkOperations:  unparkOperations,
		occupancyGauge:    occupancyGauge,
		operationDuration: operationDuration,
		totalSpotsGauge:   totalSpotsGauge,
		feesCollected:     feesCollected,
	}

	// Seed the gauges with whatever the facility already holds.
	ctx := context.Background()
	for size, count := range facility.Capacity() {
		if count > 0 {
			totalSpotsGauge.Add(ctx, int64(count), metric.WithAttributes(attribute.String("size", size.String())))
		}
	}
	if active := len(facility.ActiveTickets()); active > 0 {
		occupancyGauge.Add(ctx, int64(active))
	}

	return ifc, nil
}

func (ifc *InstrumentedFacility) AddSpots(ctx context.Context, level int, size SizeClass, count int) error {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.add_spots",
		trace.WithAttributes(
			attribute.Int("level", level),
			attribute.String("spot.size", size.String()),
			attribute.Int("spot.count", count),
		))
	defer span.End()

	if err := ifc.Facility.AddSpots(level, size, count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	ifc.totalSpotsGauge.Add(ctx, int64(count), metric.WithAttributes(attribute.String("size", size.String())))
	return nil
}

func (ifc *InstrumentedFacility) Park(ctx context.Context, vehicle *Vehicle) (Ticket, error) {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.park")
	defer span.End()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
	}
	if vehicle != nil {
		span.SetAttributes(
			attribute.String("vehicle.registration_number", vehicle.RegistrationNumber),
			attribute.String("vehicle.type", vehicle.Type.String()),
			attribute.String("vehicle.color", vehicle.Color),
		)
		labels = append(labels, attribute.String("vehicle_type", vehicle.Type.String()))
	}

	start := time.Now()

	span.AddEvent("finding_available_spot")

	ticket, err := ifc.Facility.Park(vehicle)

	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", statusFor(err)))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID),
			attribute.Int("spot.id", int(ticket.SpotID)),
			attribute.Int("spot.level", ticket.Level),
		)
		span.AddEvent("spot_allocated", trace.WithAttributes(
			attribute.Int("spot_id", int(ticket.SpotID)),
		))
		ifc.occupancyGauge.Add(ctx, 1)
	}

	ifc.parkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ifc.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ifc *InstrumentedFacility) UnparkAndPay(ctx context.Context, vehicleID string, method PaymentMethod) (Settlement, error) {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.unpark_and_pay",
		trace.WithAttributes(
			attribute.String("vehicle.registration_number", vehicleID),
			attribute.String("payment.method", method.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("settling_payment")

	settlement, err := ifc.Facility.UnparkAndPay(vehicleID, method)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "unpark_and_pay"),
		attribute.String("payment_method", method.String()),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", statusFor(err)))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.Int("spot.id", int(settlement.Ticket.SpotID)),
			attribute.Float64("payment.amount", settlement.Fee),
			attribute.Float64("parking.duration_seconds", settlement.Duration.Seconds()),
		)
		span.AddEvent("spot_released")
		ifc.occupancyGauge.Add(ctx, -1)
		ifc.feesCollected.Add(ctx, settlement.Fee, metric.WithAttributes(
			attribute.String("payment_method", method.String()),
		))
	}

	ifc.unparkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ifc.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return settlement, err
}

func (ifc *InstrumentedFacility) Availability(ctx context.Context) map[SizeClass]int {
	ctx, span := ifc.telemetry.Tracer().Start(ctx, "facility.availability")
	defer span.End()

	start := time.Now()

	availability := ifc.Facility.Availability()

	for size, count := range availability {
		span.SetAttributes(attribute.Int("available."+size.String(), count))
	}

	ifc.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "availability"),
		attribute.String("status", "success"),
	))

	return availability
}

func (ifc *InstrumentedFacility) Ticket(ctx context.Context, vehicleID string) (Ticket, bool) {
	_, span := ifc.telemetry.Tracer().Start(ctx, "facility.get_ticket",
		trace.WithAttributes(
			attribute.String("vehicle.registration_number", vehicleID),
		))
	defer span.End()

	ticket, ok := ifc.Facility.Ticket(vehicleID)
	if !ok {
		span.AddEvent("ticket_not_found")
		return ticket, false
	}

	span.AddEvent("ticket_found", trace.WithAttributes(
		attribute.Int("spot_id", int(ticket.SpotID)),
	))
	return ticket, true
}

// statusFor turns an error into a low-cardinality metric label.
func statusFor(err error) string {
	switch {
	case errors.Is(err, ErrNoCapacity):
		return "no_capacity"
	case errors.Is(err, ErrAlreadyParked):
		return "already_parked"
	case errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, ErrPaymentFailed):
		return "payment_failed"
	case errors.Is(err, ErrInvalidVehicle):
		return "invalid_vehicle"
	case errors.Is(err, ErrInternalInconsistency), errors.Is(err, ErrInvalidFee):
		return "internal_error"
	default:
		return "failed"
	}
}
