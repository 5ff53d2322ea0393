package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/studieplan/internal/app"
	"github.com/shrimpsizemoose/studieplan/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	mux := http.NewServeMux()
	handlers.NewHandler(service).Routes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting studieplan server on %s", service.Config.Server.Port)
	logger.Debug.Printf("Auth configured: %v, production: %v", service.Auth.Configured(), service.Config.Server.Production)
	if err := http.ListenAndServe(service.Config.Server.Port, mux); err != nil {
		logger.Error.Fatalf("Studieplan server failed: %v", err)
	}
}
