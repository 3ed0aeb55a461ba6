package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/onair"
	"github.com/dmitrymomot/onair/internal/httpapi"
)

func (c *CLI) newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <locale> <key>",
		Short: "Look up one translation key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []onair.TranslateOption
			if cmd.Flags().Changed("default") {
				def, _ := cmd.Flags().GetString("default")
				opts = append(opts, onair.WithDefault(def))
			}

			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				locale, key := args[0], args[1]
				res, err := a.router.Translate(ctx, locale, key, opts...)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(httpapi.TranslationResponse{
					Locale: locale,
					Key:    key,
					Value:  res.Value,
					Found:  res.Found,
					Tier:   res.Tier.String(),
				})
			})
		},
	}
	cmd.Flags().String("default", "", "Value returned when the key is missing")
	return cmd
}

func (c *CLI) newLocalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List available locales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				locales, err := a.router.AvailableLocales(ctx)
				if err != nil {
					return err
				}
				for _, l := range locales {
					fmt.Fprintln(cmd.OutOrStdout(), l)
				}
				return nil
			})
		},
	}
}

func (c *CLI) newReloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reload [locale]",
		Short: "Drop cached translations and notify peers",
		Long: "Reload drops the cached trees of every locale, or of one locale when given, " +
			"and publishes the invalidation so running instances do the same.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			warm, _ := cmd.Flags().GetBool("warm")

			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				if len(args) == 1 {
					if err := a.router.ReloadLocale(ctx, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "reloaded %s\n", args[0])
					return nil
				}

				if err := a.router.ReloadAll(ctx, onair.WithWarm(warm)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "reloaded all locales")
				return nil
			})
		},
	}
	cmd.Flags().Bool("warm", false, "Load the default locale after a full reload")
	return cmd
}

// withApp wires the process for one short-lived command and tears it down
// afterwards.
func (c *CLI) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := c.config(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.close(context.WithoutCancel(ctx)) }()

	return fn(ctx, a)
}
