package main

import (
	"context"
	"os/signal"
	"syscall"

	"articledash/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var logFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the dashboard in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
		defer stop()

		// Logs would tear the screen, so they go to a file or nowhere.
		log, err := fileLogger(logFile)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctrl := newController(newClient(), log)
		defer ctrl.Close()

		log.Info("TUI started", zap.String("api", apiURL))
		return tui.Run(ctx, ctrl, true)
	},
}

func fileLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	return zc.Build()
}

func init() {
	tuiCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")
}
