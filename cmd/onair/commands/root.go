// Package commands implements the onair command line interface.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// CLI represents the onair command line interface.
type CLI struct {
	rootCmd *cobra.Command
	out     io.Writer
	environ map[string]string
	logOut  io.Writer
}

// Option configures a CLI.
type Option func(*CLI)

// WithOutput sets where command results are printed. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *CLI) {
		c.out = w
	}
}

// WithEnvironment replaces the process environment used for configuration.
func WithEnvironment(environ map[string]string) Option {
	return func(c *CLI) {
		c.environ = environ
	}
}

// WithLogOutput sets where log records are written. Defaults to os.Stdout.
func WithLogOutput(w io.Writer) Option {
	return func(c *CLI) {
		c.logOut = w
	}
}

// New creates the CLI with every subcommand attached.
func New(opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "onair",
		Short:         "Tiered translation lookup service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	pf := rootCmd.PersistentFlags()
	pf.String("mode", "", "Storage mode: database or file (overrides ONAIR_STORAGE_MODE)")
	pf.String("locales-dir", "", "Directory of locale files for file mode (overrides ONAIR_LOCALES_DIR)")
	pf.String("default-locale", "", "Locale warmed after a full reload (overrides ONAIR_DEFAULT_LOCALE)")
	pf.String("seed", "", "Serve database mode from an in-memory store seeded with this directory of locale files")

	c := &CLI{
		rootCmd: rootCmd,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	rootCmd.SetOut(c.out)

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newTranslateCmd())
	rootCmd.AddCommand(c.newLocalesCmd())
	rootCmd.AddCommand(c.newReloadCmd())
	rootCmd.AddCommand(c.newMigrateCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}
