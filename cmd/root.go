// Package cmd holds the server's command line.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"checklistapp/config"
	"checklistapp/connection"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "checklistapp",
	Short:         "Task and checklist backend for managers and field workers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// glog reads the go flag set
		flag.CommandLine.Parse(nil)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and live view server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			if _, err := app.Seeder().Seed(ctx); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
		}
		return connection.StartServer(ctx, app)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample users, teams and tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := app.Seeder().Seed(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d teams, %d tasks\n", res.Users, res.Teams, res.Tasks)
		return nil
	},
}

func openApp(ctx context.Context) (*connection.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return connection.NewApp(ctx, cfg)
}

func init() {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "checklistapp.toml", "path to the TOML config file")
	serveCmd.Flags().Bool("seed", false, "load sample data before serving")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	defer glog.Flush()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		glog.Errorf("[cmd]%s\n", err)
		fmt.Fprintln(os.Stderr, err)
		glog.Flush()
		os.Exit(1)
	}
}
