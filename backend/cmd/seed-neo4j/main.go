package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gpad1234/light-octo/backend/internal/catalog"
	"github.com/gpad1234/light-octo/backend/internal/export"
	"github.com/gpad1234/light-octo/backend/internal/graph"
	"github.com/gpad1234/light-octo/backend/internal/schema"
	"github.com/gpad1234/light-octo/backend/pkg/config"
	"github.com/gpad1234/light-octo/backend/pkg/logger"
)

func main() {
	file := flag.String("file", "", "Graph JSON file ({\"nodes\": [...], \"edges\": [...]}) to export")
	catalogName := flag.String("catalog", "", "MongoDB sample catalog to export instead of the built-in sample")
	dryRun := flag.Bool("dry-run", false, "Print the Cypher statements instead of writing to Neo4j")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development", ""); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()

	store, err := loadGraph(*file, *catalogName)
	if err != nil {
		log.Fatal("Failed to load graph", zap.Error(err))
	}
	snap := store.Snapshot()

	if *dryRun {
		cypher, err := schema.GenerateCypher(snap)
		if err != nil {
			log.Fatal("Failed to generate Cypher", zap.Error(err))
		}
		fmt.Println(cypher.Schema)
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if !cfg.Neo4jEnabled() {
		log.Fatal("NEO4J_URI is not set")
	}

	ctx := context.Background()
	driver, err := export.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	runner := export.NewDriverRunner(driver, "")
	defer runner.Close(ctx)

	res, err := export.NewExporter(runner, cfg.WriteTimeout).Export(ctx, snap)
	if err != nil {
		log.Fatal("Export failed", zap.Error(err))
	}
	log.Info("Seeding completed successfully!",
		zap.Int("nodes", res.Nodes),
		zap.Int("relationships", res.Relationships),
	)
}

// loadGraph builds a store from a JSON file, a named catalog or, when both
// are empty, the built-in sample.
func loadGraph(file, catalogName string) (*graph.Store, error) {
	store := graph.NewStore()

	switch {
	case file != "" && catalogName != "":
		return nil, fmt.Errorf("-file and -catalog are mutually exclusive")
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		var doc graph.GraphDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		if _, err := store.Import(doc); err != nil {
			return nil, err
		}
	case catalogName != "":
		g, err := catalog.Build(catalogName)
		if err != nil {
			return nil, err
		}
		if _, err := store.Seed(g.Database, g.Nodes, g.Edges); err != nil {
			return nil, err
		}
	default:
		nodes, edges := catalog.BuiltinSample()
		if _, err := store.Seed("", nodes, edges); err != nil {
			return nil, err
		}
	}
	return store, nil
}
