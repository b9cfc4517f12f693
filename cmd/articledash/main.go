package main

import (
	"fmt"
	"os"
	"time"

	"articledash/internal/api"
	"articledash/internal/config"
	"articledash/internal/controller"
	"articledash/internal/importer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    config.Config
	logger *zap.Logger

	apiURL     string
	apiTimeout time.Duration
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "articledash",
	Short:         "articledash - An admin dashboard for an Article API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func newClient() *api.Client {
	return api.NewClient(apiURL, apiTimeout)
}

// newController builds a dashboard controller with the shared settings.
func newController(client *api.Client, log *zap.Logger) *controller.Controller {
	return controller.New(client, log.Named("controller"), controller.Options{
		SurfaceReadErrors: cfg.SurfaceReadErrors,
		Importer:          importer.New(log.Named("importer")),
	})
}

func main() {
	cfg = config.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", cfg.APIURL, "Base URL of the Article API")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "timeout", cfg.APITimeout, "Timeout for Article API requests")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Verbose development logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(articlesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
