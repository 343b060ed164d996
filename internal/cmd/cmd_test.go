package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag of c and its subcommands back to its default so
// that one test's flags do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and stdin, returning what
// was written to stdout. Telemetry is always kept in process.
func executeCommand(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--no-telemetry"))

	require.NoError(t, rootCmd.Execute(), "stderr: %s", errOut.String())
	return out.String()
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"cli", "server", "both", "demo"} {
		assert.Contains(t, names, want)
	}
}

func TestDemo(t *testing.T) {
	out := executeCommand(t, "", "demo")

	assert.Contains(t, out, "Initial availability:\n  motorcycle spots: 8\n  compact spots: 45\n  large spots: 5\n")
	assert.Contains(t, out, "Car XYZ-789 parked on level 0, spot 6")
	assert.Contains(t, out, "Availability while parked:\n  motorcycle spots: 8\n  compact spots: 44\n")
	assert.Contains(t, out, "Charged 5.00 at 2.50 per hour")
	assert.Contains(t, out, "Final availability:\n  motorcycle spots: 8\n  compact spots: 45\n  large spots: 5\n")
}

func TestDemoFlagsAndEnv(t *testing.T) {
	t.Setenv("PARKING_FACILITY_HOURLY_RATE", "4")

	out := executeCommand(t, "", "demo", "--duration", "90m", "--registration", "ABC-123", "--payment", "cash")

	assert.Contains(t, out, "Car ABC-123 parked")
	assert.Contains(t, out, "paying by cash")
	assert.Contains(t, out, "Charged 6.00 at 4.00 per hour")
}

func TestDemoDeclinedPayment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking.yaml")
	content := `
facility:
  hourly_rate: 1
  declined_payments: [credit_card]
  levels:
    - compact: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	out := executeCommand(t, "", "demo", "--config", path)

	assert.Contains(t, out, "Unparking failed: payment failed: credit_card declined")
	assert.NotContains(t, out, "Final availability")
}

func TestCLIWithConfiguredFacility(t *testing.T) {
	out := executeCommand(t, "availability\npark KA-1 car red\nstatus\n", "cli")

	assert.Contains(t, out, "motorcycle: 8\ncompact: 45\nlarge: 5\n")
	assert.Contains(t, out, "Allocated spot 6 on level 0")
	assert.Contains(t, out, "6\t0\tKA-1\tcar")
}

func TestCLIEmpty(t *testing.T) {
	out := executeCommand(t, "availability\ncreate_facility 1 1\nadd_spots 0 large 1\navailability\n", "cli", "--empty")

	assert.True(t, strings.HasPrefix(out, "Facility not created\n"))
	assert.Contains(t, out, "motorcycle: 0\ncompact: 0\nlarge: 1\n")
}
