// Command ingest seeds the restaurant review corpus from a JSON file so
// the API has something to analyze. Expected input is an array of
// restaurant objects, each with its metadata and reviews inline.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/procon-engine/backend/internal/storage/models"
	"github.com/procon-engine/backend/internal/storage/sqlite"
	"github.com/procon-engine/backend/pkg/config"
	appLogger "github.com/procon-engine/backend/pkg/logger"
)

func main() {
	inputPath := flag.String("input", "", "path to the restaurants JSON file")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("usage: ingest -input restaurants.json")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		appLogger.Fatal("Failed to read input file", zap.Error(err))
	}

	var restaurants []models.RestaurantInfo
	if err := json.Unmarshal(data, &restaurants); err != nil {
		appLogger.Fatal("Failed to parse input file", zap.Error(err))
	}

	client, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer client.Close()

	if err := client.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	inserted := 0
	for i := range restaurants {
		if err := client.InsertRestaurant(&restaurants[i]); err != nil {
			appLogger.Warn("Skipping restaurant",
				zap.String("name", restaurants[i].Name),
				zap.String("city", restaurants[i].City),
				zap.Error(err),
			)
			continue
		}
		inserted++
	}

	appLogger.Info("Restaurant corpus seeded",
		zap.Int("inserted", inserted),
		zap.Int("total", len(restaurants)),
	)
}
