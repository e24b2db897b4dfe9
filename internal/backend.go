package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/markusressel/epfa/internal/api"
	"github.com/markusressel/epfa/internal/configuration"
	"github.com/markusressel/epfa/internal/ui"
	"github.com/oklog/run"
)

// RunServer starts the REST API and blocks until it is stopped by a signal
func RunServer() error {
	config := configuration.CurrentConfig
	recorder := NewRecorderFromConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	{
		// === REST API
		rest := api.CreateRestService(api.ServiceOptions{
			Defaults: api.Defaults{
				SpeedPercent: config.Speed.Float(),
				StartLayer:   config.StartLayer,
				Tag:          config.Tag,
			},
			MaxBodySize: config.Api.MaxBodySize,
			Statistics:  recorder.Statistics(),
			History:     recorder.History(),
		})

		g.Add(func() error {
			addr := net.JoinHostPort(config.Api.Host, strconv.Itoa(config.Api.Port))
			ui.Info("Starting REST api at http://%s", addr)
			err := rest.Start(addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}, func(err error) {
			ui.Info("Stopping REST api...")
			timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer timeoutCancel()
			if err := rest.Shutdown(timeoutCtx); err != nil {
				ui.Warning("Error stopping REST api: %v", err)
			}
		})
	}
	{
		// === statistics export
		path := config.Statistics.Textfile
		if len(path) > 0 {
			g.Add(func() error {
				ticker := time.NewTicker(15 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						recorder.ExportStatistics()
						return nil
					case <-ticker.C:
						recorder.ExportStatistics()
					}
				}
			}, func(err error) {
				cancel()
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case s := <-sig:
				ui.Info("Received %s signal, exiting...", s)
				return nil
			case <-ctx.Done():
				return nil
			}
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	ui.Info("Done.")
	return nil
}
