package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/vitality/internal/api"
	"github.com/abhisek/vitality/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the tick scheduler",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().Bool("no-scheduler", false, "Disable the background tick scheduler")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(rt.engine, rt.log)
	srv.SetTimeout(rt.cfg.Server.RequestTimeout)
	if rt.cfg.Server.Metrics {
		srv.EnableMetrics()
	}

	addr := rt.cfg.Server.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	noSched, _ := cmd.Flags().GetBool("no-scheduler")
	if rt.cfg.Scheduler.Enabled && !noSched {
		sched, err := scheduler.New(rt.engine, rt.cfg.Scheduler.Spec, rt.engine.Config().Location, rt.log)
		if err != nil {
			return err
		}
		// Apply anything missed while the server was down.
		sched.RunOnce(ctx, time.Now())
		sched.Start()
		defer sched.Stop(context.Background())
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.WithField("addr", addr).Info("listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rt.log.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
