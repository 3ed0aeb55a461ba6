package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/onair"
	"github.com/dmitrymomot/onair/internal/httpapi"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve translations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr, _ = cmd.Flags().GetString("addr")
			}
			if cmd.Flags().Changed("refresh") {
				cfg.RefreshSchedule, _ = cmd.Flags().GetString("refresh")
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides ONAIR_HTTP_ADDR)")
	cmd.Flags().String("refresh", "", "Cron schedule for full reloads (overrides ONAIR_REFRESH_SCHEDULE)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hooks := []func(context.Context) error{}

	go func() {
		err := a.router.Listen(ctx)
		switch {
		case err == nil, errors.Is(err, context.Canceled), errors.Is(err, onair.ErrNoInvalidationBus):
		default:
			a.log.Error("invalidation listener stopped", slog.Any("error", err))
		}
	}()

	if a.cfg.RefreshSchedule != "" {
		stop, err := a.router.StartRefresh(a.cfg.RefreshSchedule)
		if err != nil {
			_ = a.close(context.Background())
			return err
		}
		hooks = append(hooks, func(context.Context) error {
			stop()
			return nil
		})
	}

	h := httpapi.New(a.router,
		httpapi.WithLogger(a.log),
		httpapi.WithChecker(a.checker),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})),
		httpapi.WithDefaultLocale(a.cfg.DefaultLocale),
	)

	hooks = append(hooks, a.close)
	return httpapi.Serve(ctx, a.cfg.HTTPAddr, h, a.log, hooks...)
}
