package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"parking-facility/internal/parking"
	"parking-facility/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the facility over HTTP",
	Long: `Serve the configured facility over a JSON HTTP API.

Endpoints:
  GET  /health
  GET  /metrics
  POST /api/facility
  POST /api/facility/park
  POST /api/facility/unpark
  GET  /api/facility/availability
  GET  /api/facility/status
  GET  /api/facility/tickets/{registration}`,
	RunE: runServer,
}

var bothCmd = &cobra.Command{
	Use:   "both",
	Short: "Run the HTTP server and the interactive shell on one facility",
	RunE:  runBoth,
}

var serverBindings = flagBindings{"server.port": "port"}

func init() {
	serverCmd.Flags().IntP("port", "p", 8080, "port for the HTTP server")
	bothCmd.Flags().IntP("port", "p", 8080, "port for the HTTP server")
	bothCmd.Flags().Bool("empty", false, "start without a facility")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(bothCmd)
}

func (a *app) newServer(cmd *cobra.Command) (*server.Server, *server.Handler, error) {
	opts, err := a.facilityOptions()
	if err != nil {
		return nil, nil, err
	}

	var instrumented *parking.InstrumentedFacility
	if empty, _ := cmd.Flags().GetBool("empty"); !empty {
		if instrumented, err = a.facility(); err != nil {
			return nil, nil, err
		}
	}

	handler, err := server.NewHandler(a.cfg.Service.Name, a.telemetry, instrumented, opts...)
	if err != nil {
		return nil, nil, err
	}

	return server.NewServer(a.cfg.Server.Port, handler), handler, nil
}

func shutdownServer(a *app, srv *server.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("server shutdown error", "error", err)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd, serverBindings)
	if err != nil {
		return err
	}
	defer a.shutdown()

	srv, _, err := a.newServer(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	select {
	case err := <-serverDone:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
		shutdownServer(a, srv)
	}
	return nil
}

func runBoth(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd, serverBindings)
	if err != nil {
		return err
	}
	defer a.shutdown()

	srv, handler, err := a.newServer(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	opts, err := a.facilityOptions()
	if err != nil {
		return err
	}
	shell := parking.NewShell(a.telemetry, cmd.InOrStdin(), cmd.OutOrStdout(), opts...)
	if current := handler.Current(); current != nil {
		shell.UseFacility(current)
	}

	cliDone := make(chan struct{})
	go func() {
		shell.Run(ctx)
		close(cliDone)
	}()

	select {
	case err := <-serverDone:
		if !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server error", "error", err)
		}
	case <-cliDone:
		a.logger.Info("CLI exited")
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
	}

	shutdownServer(a, srv)
	return nil
}
