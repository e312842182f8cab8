package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(serveMetricsCmd)
	serveMetricsCmd.Flags().String("addr", "", "listen address (default metrics.addr)")
	_ = viper.BindPFlag("metrics.addr", serveMetricsCmd.Flags().Lookup("addr"))
}

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve Prometheus metrics until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		addr := svc.Config.Metrics.Addr
		if addr == "" {
			return errors.New("no listen address: set metrics.addr or pass --addr")
		}

		sizes := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "ordinal",
			Name:      "entities",
			Help:      "Entities in the database.",
		}, func() float64 {
			entities, err := svc.Reader.ListEntities(context.Background())
			if err != nil {
				svc.Logger.Warn("count entities", "error", err)
				return 0
			}
			return float64(len(entities))
		})
		if err := registry.Register(sizes); err != nil {
			return err
		}
		defer registry.Unregister(sizes)

		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "serving metrics on %s\n", addr)
		svc.Logger.Info("serving metrics", "addr", addr)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	},
}
