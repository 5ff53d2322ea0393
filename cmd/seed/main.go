package main

import (
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/studieplan/internal/app"
)

func main() {
	var (
		configPath  = flag.String("config", "config.toml", "Path to config file")
		catalogPath = flag.String("catalog", "", "Path to the course catalog JSON, overrides seed.catalog_path")
	)
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	path := *catalogPath
	if path == "" {
		path = service.Config.Seed.CatalogPath
	}
	if path == "" {
		logger.Error.Fatalf("No catalog given, use -catalog or seed.catalog_path")
	}

	catalog, err := app.LoadCatalog(path)
	if err != nil {
		logger.Error.Fatalf("Failed to load catalog: %v", err)
	}

	n, err := service.Seed(catalog, service.Config.Seed.StudentName)
	if err != nil {
		logger.Error.Fatalf("Seeding stopped after %d courses: %v", n, err)
	}
	logger.Info.Printf("Seeded %d courses from %s", n, path)
}
