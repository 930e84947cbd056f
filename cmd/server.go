/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/bloghub/apiserver/config"
	"github.com/bloghub/apiserver/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the blog backend server",
	Long: `Starts the blog backend server. Usage:

	bloghub server
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logLevel, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logLevel = logrus.InfoLevel
		}
		logger.SetLevel(logLevel)

		srv, err := server.New(cmd.Context(), cfg, logger)
		if err != nil {
			logger.WithError(err).Error("failed to start server")
			os.Exit(1)
		}
		if err := srv.Start(); err != nil {
			logger.WithError(err).Error("server error")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
