package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"wtfSocial/action"
	"wtfSocial/auth"
	"wtfSocial/cache"
	"wtfSocial/crud"
	"wtfSocial/http"
)

// main is the app's entry point.
func main() {
	// The flag "-prod" means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise use the default dev setup.
	// In production the .config.json file is required and the app exits if no file is found.
	config, err := LoadConfig(*productionBool)
	must(err)

	logger := newLogger(config.IsProd())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	must(Open(db, config.IsProd()))
	defer Close(db)
	must(Migrate(db, config.IsProd()))

	// Start the crud services.
	services, err := crud.NewAllServices(db.Gorm)
	must(err)

	pages, err := cache.New(config.CacheSize)
	must(err)

	verifier, err := auth.NewVerifier(ctx, auth.VerifierConfig{
		HMACSecret: config.Identity.HMACSecret,
		JWKSURL:    config.Identity.JWKSURL,
		Issuer:     config.Identity.Issuer,
	})
	must(err)

	actions := action.New(services,
		action.WithInvalidator(pages),
		action.WithLogger(logger))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Set up a webserver and serve the app.
	server, err := http.NewServer(actions, verifier, auth.NewResolver(services.User), pages, reg, logger)
	must(err)
	must(server.Run(ctx, fmt.Sprintf(":%d", config.Port)))
	logger.Info("server stopped")
}

// newLogger logs JSON in production and text everywhere else.
func newLogger(isProd bool) *slog.Logger {
	if isProd {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
