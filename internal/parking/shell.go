package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Shell is a line-oriented command interpreter over a facility.
type Shell struct {
	facility    *InstrumentedFacility
	scanner     *bufio.Scanner
	out         io.Writer
	telemetry   *TelemetryProvider
	facilityOps []Option
}

// NewShell reads commands from in and writes replies to out. opts are
// applied to every facility built with create_facility.
func NewShell(telemetry *TelemetryProvider, in io.Reader, out io.Writer, opts ...Option) *Shell {
	return &Shell{
		scanner:     bufio.NewScanner(in),
		out:         out,
		telemetry:   telemetry,
		facilityOps: opts,
	}
}

// UseFacility makes the shell operate on an already configured facility.
func (s *Shell) UseFacility(facility *InstrumentedFacility) {
	s.facility = facility
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for s.scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.parse_command")
	defer span.End()

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_facility":
		s.handleCreateFacility(ctx, parts)
	case "add_spots":
		s.handleAddSpots(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "unpark":
		s.handleUnpark(ctx, parts)
	case "availability":
		s.handleAvailability(ctx)
	case "status":
		s.handleStatus(ctx)
	case "ticket":
		s.handleTicket(ctx, parts)
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) requireFacility(span trace.Span) bool {
	if s.facility == nil {
		span.AddEvent("facility_not_created")
		s.println("Facility not created")
		return false
	}
	return true
}

func (s *Shell) handleCreateFacility(ctx context.Context, parts []string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.create_facility")
	defer span.End()

	if len(parts) != 3 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: create_facility <levels> <hourly_rate>")
		return
	}

	levels, err := strconv.Atoi(parts[1])
	if err != nil || levels <= 0 {
		span.RecordError(fmt.Errorf("invalid level count: %s", parts[1]))
		s.println("Invalid level count")
		return
	}

	rate, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || rate < 0 {
		span.RecordError(fmt.Errorf("invalid hourly rate: %s", parts[2]))
		s.println("Invalid hourly rate")
		return
	}

	span.SetAttributes(
		attribute.Int("facility.levels", levels),
		attribute.Float64("facility.hourly_rate", rate),
	)

	facility, err := NewFacility(levels, rate, s.facilityOps...)
	if err != nil {
		span.RecordError(err)
		s.printf("Error creating facility: %s\n", err.Error())
		return
	}

	instrumented, err := NewInstrumentedFacility(facility, s.telemetry)
	if err != nil {
		span.RecordError(err)
		s.printf("Error creating facility: %s\n", err.Error())
		return
	}

	s.facility = instrumented
	span.AddEvent("facility_created")
	s.printf("Created a facility with %d levels at %.2f per hour\n", levels, rate)
}

func (s *Shell) handleAddSpots(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.add_spots")
	defer span.End()

	if !s.requireFacility(span) {
		return
	}

	if len(parts) != 4 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: add_spots <level> <motorcycle|compact|large> <count>")
		return
	}

	level, err := strconv.Atoi(parts[1])
	if err != nil {
		s.println("Invalid level")
		return
	}

	size, err := ParseSizeClass(parts[2])
	if err != nil {
		s.println("Invalid size class")
		return
	}

	count, err := strconv.Atoi(parts[3])
	if err != nil {
		s.println("Invalid count")
		return
	}

	if err := s.facility.AddSpots(ctx, level, size, count); err != nil {
		span.AddEvent("add_spots_failed")
		s.printf("Error: %s\n", err.Error())
		return
	}

	s.printf("Added %d %s spots to level %d\n", count, size, level)
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.park_command")
	defer span.End()

	if !s.requireFacility(span) {
		return
	}

	if len(parts) != 3 && len(parts) != 4 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: park <registration_number> <motorcycle|car|truck> [color]")
		return
	}

	vehicleType, err := ParseVehicleType(parts[2])
	if err != nil {
		s.println("Invalid vehicle type")
		return
	}

	color := ""
	if len(parts) == 4 {
		color = parts[3]
	}

	ticket, err := s.facility.Park(ctx, NewVehicle(parts[1], color, vehicleType))
	switch {
	case errors.Is(err, ErrNoCapacity):
		span.AddEvent("parking_failed")
		s.printf("Sorry, no %s spot available\n", vehicleType.Size())
		return
	case errors.Is(err, ErrAlreadyParked):
		span.AddEvent("already_parked")
		s.printf("Vehicle %s is already parked\n", parts[1])
		return
	case err != nil:
		span.AddEvent("parking_failed")
		s.printf("Error: %s\n", err.Error())
		return
	}

	span.AddEvent("parking_successful", trace.WithAttributes(
		attribute.Int("spot_id", int(ticket.SpotID)),
	))
	s.printf("Allocated spot %d on level %d (ticket %s)\n", ticket.SpotID, ticket.Level, ticket.ID)
}

func (s *Shell) handleUnpark(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.unpark_command")
	defer span.End()

	if !s.requireFacility(span) {
		return
	}

	if len(parts) != 3 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: unpark <registration_number> <credit_card|debit_card|cash|mobile_app>")
		return
	}

	method, err := ParsePaymentMethod(parts[2])
	if err != nil {
		s.println("Invalid payment method")
		return
	}

	settlement, err := s.facility.UnparkAndPay(ctx, parts[1], method)
	switch {
	case errors.Is(err, ErrTicketNotFound):
		span.AddEvent("ticket_not_found")
		s.println("Not found")
		return
	case errors.Is(err, ErrPaymentFailed):
		span.AddEvent("payment_failed")
		s.printf("Payment failed: %s\n", err.Error())
		return
	case err != nil:
		span.AddEvent("unpark_failed")
		s.printf("Error: %s\n", err.Error())
		return
	}

	span.AddEvent("unpark_successful")
	s.printf("Spot %d is free. Charged %.2f by %s for %s\n",
		settlement.Ticket.SpotID, settlement.Fee, settlement.Method, settlement.Duration.Round(time.Second))
}

func (s *Shell) handleAvailability(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.availability_command")
	defer span.End()

	if !s.requireFacility(span) {
		return
	}

	availability := s.facility.Availability(ctx)
	for _, size := range SizeClasses {
		s.printf("%s: %d\n", size, availability[size])
	}
}

func (s *Shell) handleStatus(ctx context.Context) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.status_command")
	defer span.End()

	if !s.requireFacility(span) {
		return
	}

	tickets := s.facility.ActiveTickets()
	if len(tickets) == 0 {
		span.AddEvent("facility_empty")
		s.println("Facility is empty")
		return
	}

	span.SetAttributes(attribute.Int("active_tickets", len(tickets)))

	s.println("Spot\tLevel\tRegistration No\tType")
	for _, ticket := range tickets {
		s.printf("%d\t%d\t%s\t%s\n", ticket.SpotID, ticket.Level, ticket.VehicleID, ticket.VehicleType)
	}
}

func (s *Shell) handleTicket(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.ticket_command")
	defer span.End()

	if !s.requireFacility(span) {
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: ticket <registration_number>")
		return
	}

	ticket, ok := s.facility.Ticket(ctx, parts[1])
	if !ok {
		s.println("Not found")
		return
	}

	s.printf("%s spot=%d level=%d since=%s\n", ticket.ID, ticket.SpotID, ticket.Level, ticket.EntryTime.Format(time.RFC3339))
}
