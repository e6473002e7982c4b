// @title           Route Scout API
// @version         1.0
// @description     REST API подбора скалолазных маршрутов по описанию, категории сложности и области.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  akozadaev@inbox.ru
// @contact.url    https://github.com/akozadaev/route_scout

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @schemes   http https
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/akozadaev/route_scout/docs" // swagger docs
	"github.com/akozadaev/route_scout/internal/config"
	"github.com/akozadaev/route_scout/internal/handlers"
	"github.com/akozadaev/route_scout/internal/logging"
	"github.com/akozadaev/route_scout/internal/middleware"
	"github.com/akozadaev/route_scout/internal/ranking"
	"github.com/akozadaev/route_scout/internal/recommend"
	"github.com/akozadaev/route_scout/internal/storage"
	"github.com/akozadaev/route_scout/internal/textnorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	gateway, closeGateway, err := newGateway(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to initialize route store")
	}
	defer closeGateway()

	guarded := storage.NewBreakerGateway(gateway, storage.BreakerConfig{
		Name:     cfg.StoreBackend,
		Failures: cfg.Breaker.Failures,
		Timeout:  cfg.Breaker.Timeout,
	})
	catalog := storage.NewCatalog(guarded, cfg.Catalog.TTL, cfg.Catalog.CacheSize)
	ranker := ranking.NewRanker(textnorm.New(cfg.Recommend.StopWords))

	service := recommend.NewService(guarded, catalog, ranker, recommend.Config{
		DefaultArea:    cfg.Recommend.DefaultArea,
		TopK:           cfg.Recommend.TopK,
		Grades:         cfg.Grades.Marks(),
		MapStyle:       cfg.Map.Style,
		MapAccessToken: cfg.Map.AccessToken,
	})

	// Прогрев каталога: ошибка не фатальна, хранилище может подняться позже
	if areas, err := service.Areas(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Could not preload location catalog")
	} else {
		logging.Info().Int("areas", len(areas)).Msg("Location catalog loaded")
	}

	h := handlers.NewHandlers(service)

	// Настройка роутера
	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.Metrics)
	h.Register(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	handler := middleware.CORS(cfg.HTTP.CORSOrigins)(
		middleware.RateLimit(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)(router),
	)

	// Настройка сервера
	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logging.Info().Str("port", cfg.AppPort).Str("backend", cfg.StoreBackend).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// SIGHUP перечитывает каталог местоположений, например после работы индексатора
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			n, err := catalog.Refresh(context.Background())
			if err != nil {
				logging.Warn().Err(err).Msg("Could not refresh location catalog")
				continue
			}
			logging.Info().Int("rows", n).Msg("Location catalog refreshed")
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	logging.Info().Msg("Server exited")
}

// newGateway подключает выбранное хранилище маршрутов.
func newGateway(cfg *config.Config) (storage.Gateway, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendElasticsearch:
		// Клиент нужен для управления индексом, поиск идет прямыми HTTP запросами
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses:         []string{cfg.Elasticsearch.URL},
			DisableMetaHeader: true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
		}
		es := storage.NewElasticsearchStorageWithURL(esClient, cfg.Elasticsearch.Index, cfg.Elasticsearch.URL)
		ensureIndex(es)
		logging.Info().Str("url", cfg.Elasticsearch.URL).Str("index", cfg.Elasticsearch.Index).
			Msg("Elasticsearch/OpenSearch client initialized")
		return es, func() {}, nil

	default:
		pg, err := storage.NewPostgresStorage(cfg.Postgres.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("error creating PostgreSQL client: %w", err)
		}
		logging.Info().Str("host", cfg.Postgres.Host).Str("db", cfg.Postgres.DB).Msg("Connected to PostgreSQL")
		return pg, func() {
			if err := pg.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing PostgreSQL connection")
			}
		}, nil
	}
}

// ensureIndex создает индекс маршрутов, если найден файл маппинга.
func ensureIndex(es *storage.ElasticsearchStorage) {
	mappingPaths := []string{
		"migrations/elasticsearch_mapping.json",
		"../migrations/elasticsearch_mapping.json",
		filepath.Join(filepath.Dir(os.Args[0]), "../migrations/elasticsearch_mapping.json"),
	}

	var mappingData []byte
	for _, path := range mappingPaths {
		data, err := os.ReadFile(path)
		if err == nil {
			mappingData = data
			break
		}
	}

	if len(mappingData) == 0 {
		logging.Warn().Msg("Could not read mapping file from any location")
		return
	}
	if err := es.CreateIndex(context.Background(), string(mappingData)); err != nil {
		logging.Warn().Err(err).Msg("Could not create index")
		return
	}
	logging.Info().Msg("Elasticsearch index created/verified")
}
