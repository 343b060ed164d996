package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"parking-facility/internal/parking"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through park, wait and pay on the configured facility",
	Long: `Print the configured facility's availability, park a car, let simulated
time pass, then unpark it and settle the fee.

The clock is simulated, so --duration does not actually wait.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().String("registration", "XYZ-789", "registration number of the demo car")
	demoCmd.Flags().Duration("duration", 2*time.Hour, "simulated time between parking and leaving")
	demoCmd.Flags().String("payment", parking.CreditCard.String(), "payment method used on exit")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	registration, _ := cmd.Flags().GetString("registration")
	duration, _ := cmd.Flags().GetDuration("duration")
	payment, _ := cmd.Flags().GetString("payment")

	method, err := parking.ParsePaymentMethod(payment)
	if err != nil {
		return err
	}

	a, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer a.shutdown()

	clock := parking.NewManualClock(time.Now().UTC())
	facility, err := a.facility(parking.WithClock(clock))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	printAvailability(out, "Initial availability:", facility.Availability(ctx))

	ticket, err := facility.Park(ctx, parking.NewVehicle(registration, "", parking.Car))
	if err != nil {
		fmt.Fprintf(out, "Parking failed: %s\n", err)
		return nil
	}
	fmt.Fprintf(out, "\nCar %s parked on level %d, spot %d (ticket %s). Simulating %s passing...\n",
		registration, ticket.Level, ticket.SpotID, ticket.ID, duration)

	printAvailability(out, "Availability while parked:", facility.Availability(ctx))

	clock.Advance(duration)

	fmt.Fprintf(out, "\nUnparking %s and paying by %s.\n", registration, method)
	settlement, err := facility.UnparkAndPay(ctx, registration, method)
	if err != nil {
		fmt.Fprintf(out, "Unparking failed: %s\n", err)
		return nil
	}
	fmt.Fprintf(out, "Vehicle %s unparked after %s. Charged %.2f at %.2f per hour.\n",
		registration, settlement.Duration, settlement.Fee, facility.HourlyRate())

	printAvailability(out, "Final availability:", facility.Availability(ctx))
	return nil
}

func printAvailability(out io.Writer, title string, availability map[parking.SizeClass]int) {
	fmt.Fprintln(out, title)
	for _, size := range parking.SizeClasses {
		fmt.Fprintf(out, "  %s spots: %d\n", size, availability[size])
	}
}
