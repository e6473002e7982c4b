package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/urfave/cli/v2"

	"github.com/akozadaev/route_scout/internal/config"
	"github.com/akozadaev/route_scout/internal/indexer"
	"github.com/akozadaev/route_scout/internal/logging"
	"github.com/akozadaev/route_scout/internal/models"
	"github.com/akozadaev/route_scout/internal/storage"
)

func main() {
	app := &cli.App{
		Name:  "indexer",
		Usage: "Load climbing routes into the Elasticsearch/OpenSearch read model",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mapping",
				Aliases: []string{"m"},
				Usage:   "Path to the index mapping JSON",
				Value:   "migrations/elasticsearch_mapping.json",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of routes per bulk request",
				Value: indexer.DefaultBatchSize,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent bulk requests",
				Value: indexer.DefaultWorkers,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Copy every route from PostgreSQL into the index",
				Action: syncCommand,
			},
			{
				Name:      "load",
				Usage:     "Index routes from a JSON file",
				ArgsUsage: "<routes.json>",
				Action:    loadCommand,
			},
			{
				Name:      "put",
				Usage:     "Create or replace a single route in the index",
				ArgsUsage: "<route.json>",
				Action:    putCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.Fatal().Err(err).Msg("Indexing failed")
	}
}

func syncCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	pg, err := storage.NewPostgresStorage(cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("error creating PostgreSQL client: %w", err)
	}
	defer pg.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	routes, err := pg.ListRoutes(ctx)
	if err != nil {
		return err
	}
	logging.Info().Int("routes", len(routes)).Msg("Routes read from PostgreSQL")

	return index(ctx, c, cfg, routes)
}

func loadCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one JSON file argument", 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	routes, err := indexer.LoadFile(c.Args().First())
	if err != nil {
		return err
	}
	logging.Info().Int("routes", len(routes)).Str("file", c.Args().First()).Msg("Routes read from file")

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return index(ctx, c, cfg, routes)
}

func putCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one JSON file argument", 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	route, err := indexer.LoadRoute(c.Args().First())
	if err != nil {
		return err
	}

	es, err := newIndex(c, cfg)
	if err != nil {
		return err
	}
	if err := es.PutRoute(c.Context, route); err != nil {
		return err
	}

	logging.Info().Int64("route_id", route.ID).Str("index", cfg.Elasticsearch.Index).Msg("Route stored")
	return nil
}

func index(ctx context.Context, c *cli.Context, cfg *config.Config, routes []*models.Route) error {
	es, err := newIndex(c, cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	uploader := indexer.NewUploader(es, c.Int("batch-size"), c.Int("workers"))
	n, err := uploader.Upload(ctx, routes)
	if err != nil {
		return fmt.Errorf("indexed %d of %d routes: %w", n, len(routes), err)
	}

	logging.Info().
		Int("routes", n).
		Str("index", cfg.Elasticsearch.Index).
		Dur("elapsed", time.Since(start)).
		Msg("Indexing completed successfully")
	return nil
}

// newIndex подключается к кластеру и создает индекс маршрутов, если его еще нет.
func newIndex(c *cli.Context, cfg *config.Config) (*storage.ElasticsearchStorage, error) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:         []string{cfg.Elasticsearch.URL},
		DisableMetaHeader: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}
	es := storage.NewElasticsearchStorageWithURL(esClient, cfg.Elasticsearch.Index, cfg.Elasticsearch.URL)

	mapping, err := os.ReadFile(c.String("mapping"))
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}
	if err := es.CreateIndex(c.Context, string(mapping)); err != nil {
		return nil, err
	}
	return es, nil
}
