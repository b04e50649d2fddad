package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/peg-lens/pkg/server"
	"github.com/de-tools/peg-lens/pkg/services/config"
	"github.com/de-tools/peg-lens/pkg/services/engine"
	"github.com/de-tools/peg-lens/pkg/services/source"
)

var (
	cfgPath     string
	credentials string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the PEG Lens web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "peglens.yaml",
		"Path to the engine config file")
	rootCmd.Flags().StringVar(&credentials, "credentials", "credentials.ini",
		"Path to the warehouse credentials file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load engine config: %w", err)
	}

	manager := engine.NewManager(cfg, source.DefaultRegistry(), credentials)

	logger.Info().
		Str("config", cfgPath).
		Int("endpoints", len(cfg.Endpoints)).
		Msg("engine configuration loaded")

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Analysis: manager,
		},
	})

	return api.Start()
}
