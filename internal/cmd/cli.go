package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"parking-facility/internal/parking"
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Run the interactive facility shell",
	Long: `Read commands from stdin and print replies to stdout.

Commands:
  create_facility <levels> <hourly_rate>
  add_spots <level> <motorcycle|compact|large> <count>
  park <registration_number> <motorcycle|car|truck> [color]
  unpark <registration_number> <credit_card|debit_card|cash|mobile_app>
  availability
  status
  ticket <registration_number>

Unless --empty is set the shell starts with the configured facility.`,
	RunE: runCLI,
}

func init() {
	cliCmd.Flags().Bool("empty", false, "start without a facility; use create_facility")
	rootCmd.AddCommand(cliCmd)
}

func runCLI(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer a.shutdown()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shell, err := a.newShell(cmd)
	if err != nil {
		return err
	}
	shell.Run(ctx)
	return nil
}

func (a *app) newShell(cmd *cobra.Command) (*parking.Shell, error) {
	opts, err := a.facilityOptions()
	if err != nil {
		return nil, err
	}

	shell := parking.NewShell(a.telemetry, cmd.InOrStdin(), cmd.OutOrStdout(), opts...)

	if empty, _ := cmd.Flags().GetBool("empty"); !empty {
		facility, err := a.facility()
		if err != nil {
			return nil, err
		}
		shell.UseFacility(facility)
	}

	return shell, nil
}
