// Package commands implements the CLI commands for rgdemo.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/rgraph"
	"github.com/gogpu/rgraph/internal/demo"
)

// Version is the rgdemo version. It defaults to the library version and
// can be overridden at link time.
var Version = rgraph.Version

// CLI represents the command line interface for rgdemo.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application plans and runs frame files.
type Application interface {
	Plan(path string) (*demo.Plan, error)
	Run(ctx context.Context, path string, opts demo.Options) (*demo.Report, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "rgdemo",
		Short:         "Compile and run render graph frame files",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "Log graph and cache activity to stderr")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			rgraph.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newPlanCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newVersionCmd())

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

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
