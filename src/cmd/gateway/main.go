// Command gateway serves restaurant search, recommendations and favorites.
package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"foodie/src/config"
	"foodie/src/db"
	"foodie/src/handlers"
	"foodie/src/logger"
	"foodie/src/server"
	"foodie/src/yelp"
)

var (
	envFile string
	port    string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "gateway",
	Short:         "Restaurant search and favorites API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	rootCmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}
	if err := cfg.Validate(config.ServiceGateway); err != nil {
		return err
	}

	ctx := cmd.Context()
	store, closeStore, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tmpl, err := handlers.LoadTemplate()
	if err != nil {
		return err
	}

	dir := yelp.NewClient(cfg.YelpAPIHost, cfg.YelpAPIKey, cfg.UpstreamTimeout)
	mux := handlers.NewGatewayMux(dir, store, tmpl)

	return server.Run(ctx, "Gateway", cfg.Port, server.WithCORS(mux, cfg.AllowedOrigins))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
