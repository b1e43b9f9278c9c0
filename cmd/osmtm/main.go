// cmd/osmtm/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joaovitor3/osm-tm-communication/internal/api"
	"github.com/joaovitor3/osm-tm-communication/internal/archive"
	"github.com/joaovitor3/osm-tm-communication/internal/auth"
	"github.com/joaovitor3/osm-tm-communication/internal/config"
	"github.com/joaovitor3/osm-tm-communication/internal/mediawiki"
	"github.com/joaovitor3/osm-tm-communication/internal/store"
	"github.com/joaovitor3/osm-tm-communication/internal/wikipage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
	addrFlag   string
)

func versionString() string {
	return fmt.Sprintf("osmtm %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "osmtm",
		Short:         "Documentation backend for organised OSM mapping projects",
		Long:          "osmtm archives Tasking Manager project documents and keeps their wiki documentation pages up to date.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides config)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(versionString())
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Server.Addr = addrFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := store.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	arch, err := archive.New(cfg.Archive)
	if err != nil {
		return err
	}

	wiki, err := mediawiki.NewClient(cfg.Wiki.Endpoint, cfg.Wiki.BotName, cfg.Wiki.BotPassword, cfg.Wiki.RateLimit)
	if err != nil {
		return err
	}
	if err := wiki.Login(ctx); err != nil {
		return fmt.Errorf("mediawiki login: %w", err)
	}

	signer := auth.NewSigner(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenMaxAge)*time.Second)
	server := api.NewServer(db, arch, signer, wikipage.NewPublisher(wiki))

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
