// Package config предоставляет загрузку конфигурации приложения.
//
// Источники применяются слоями: значения по умолчанию, затем необязательный
// YAML-файл (CONFIG_PATH или config.yaml), затем переменные окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/akozadaev/route_scout/internal/models"
	"github.com/akozadaev/route_scout/internal/textnorm"
)

// Поддерживаемые хранилища кандидатов.
const (
	BackendPostgres      = "postgres"
	BackendElasticsearch = "elasticsearch"
)

// ConfigPathEnvVar переопределяет путь к YAML-файлу конфигурации.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths - пути поиска файла конфигурации по порядку.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// Config содержит все параметры конфигурации приложения.
type Config struct {
	AppPort string `koanf:"app_port"` // Порт для HTTP сервера

	Postgres      PostgresConfig      `koanf:"postgres"`
	Elasticsearch ElasticsearchConfig `koanf:"elasticsearch"`
	StoreBackend  string              `koanf:"store_backend"` // postgres или elasticsearch

	Recommend RecommendConfig `koanf:"recommend"`
	Grades    GradesConfig    `koanf:"grades"`
	Map       MapConfig       `koanf:"map"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	HTTP      HTTPConfig      `koanf:"http"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// PostgresConfig - параметры подключения к PostgreSQL.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DB       string `koanf:"db"`
	SSLMode  string `koanf:"sslmode"`
}

// DSN собирает строку подключения для lib/pq.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode)
}

// ElasticsearchConfig - параметры Elasticsearch/OpenSearch.
type ElasticsearchConfig struct {
	URL   string `koanf:"url"`
	Index string `koanf:"index"`
}

// RecommendConfig - параметры подбора маршрутов.
type RecommendConfig struct {
	DefaultArea string   `koanf:"default_area"` // Область, если пользователь ничего не выбрал
	TopK        int      `koanf:"top_k"`
	StopWords   []string `koanf:"stop_words"`
}

// GradesConfig описывает шкалу сложности: Labels[i] - подпись категории Floor+i.
type GradesConfig struct {
	Floor  int      `koanf:"floor"`
	Labels []string `koanf:"labels"`
}

// Ceil - наибольшая категория шкалы.
func (g GradesConfig) Ceil() int {
	return g.Floor + len(g.Labels) - 1
}

// Marks возвращает подписи всех категорий по возрастанию.
func (g GradesConfig) Marks() []models.GradeMark {
	marks := make([]models.GradeMark, len(g.Labels))
	for i, label := range g.Labels {
		marks[i] = models.GradeMark{Grade: g.Floor + i, Label: label}
	}
	return marks
}

// MapConfig - параметры слоя карты для фронтенда.
type MapConfig struct {
	AccessToken string `koanf:"access_token"`
	Style       string `koanf:"style"`
}

// CatalogConfig - кэш каталога местоположений. TTL 0 отключает кэш.
type CatalogConfig struct {
	TTL       time.Duration `koanf:"ttl"`
	CacheSize int           `koanf:"cache_size"`
}

// BreakerConfig - автоматический выключатель запросов к хранилищу.
type BreakerConfig struct {
	Failures uint32        `koanf:"failures"`
	Timeout  time.Duration `koanf:"timeout"`
}

// HTTPConfig - параметры HTTP-слоя.
type HTTPConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig - уровень и формат логов.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		AppPort: "8080",
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "routescout",
			Password: "routescout",
			DB:       "routescout",
			SSLMode:  "disable",
		},
		Elasticsearch: ElasticsearchConfig{
			URL:   "http://localhost:9200",
			Index: "routes",
		},
		StoreBackend: BackendPostgres,
		Recommend: RecommendConfig{
			DefaultArea: "California",
			TopK:        20,
			StopWords:   textnorm.DefaultStopWords,
		},
		Grades: GradesConfig{
			Floor: -1,
			Labels: []string{
				"VB", "V0", "V1", "V2", "V3", "V4", "V5", "V6",
				"V7", "V8", "V9", "V10", "V11", "V12", "V13", "V14",
			},
		},
		Map: MapConfig{
			Style: "mapbox://styles/plotlymapbox/cjvppq1jl1ips1co3j12b9hex",
		},
		Catalog: CatalogConfig{
			TTL:       5 * time.Minute,
			CacheSize: 256,
		},
		Breaker: BreakerConfig{
			Failures: 5,
			Timeout:  30 * time.Second,
		},
		HTTP: HTTPConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load загружает конфигурацию: значения по умолчанию, файл, переменные окружения.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate проверяет согласованность параметров.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Recommend.DefaultArea) == "" {
		errs = append(errs, errors.New("recommend.default_area must not be empty"))
	}
	if c.Recommend.TopK <= 0 {
		errs = append(errs, fmt.Errorf("recommend.top_k must be positive, got %d", c.Recommend.TopK))
	}
	if len(c.Grades.Labels) == 0 {
		errs = append(errs, errors.New("grades.labels must not be empty"))
	}
	if c.StoreBackend != BackendPostgres && c.StoreBackend != BackendElasticsearch {
		errs = append(errs, fmt.Errorf("store_backend must be %q or %q, got %q",
			BackendPostgres, BackendElasticsearch, c.StoreBackend))
	}
	if c.Catalog.TTL < 0 {
		errs = append(errs, errors.New("catalog.ttl must not be negative"))
	}
	return errors.Join(errs...)
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings сопоставляет переменные окружения ключам конфигурации.
var envMappings = map[string]string{
	"APP_PORT":            "app_port",
	"POSTGRES_HOST":       "postgres.host",
	"POSTGRES_PORT":       "postgres.port",
	"POSTGRES_USER":       "postgres.user",
	"POSTGRES_PASSWORD":   "postgres.password",
	"POSTGRES_DB":         "postgres.db",
	"POSTGRES_SSLMODE":    "postgres.sslmode",
	"ELASTICSEARCH_URL":   "elasticsearch.url",
	"ELASTICSEARCH_INDEX": "elasticsearch.index",
	"STORE_BACKEND":       "store_backend",
	"DEFAULT_AREA":        "recommend.default_area",
	"TOP_K":               "recommend.top_k",
	"STOP_WORDS":          "recommend.stop_words",
	"GRADE_FLOOR":         "grades.floor",
	"GRADE_LABELS":        "grades.labels",
	"MAPBOX_ACCESS_TOKEN": "map.access_token",
	"MAPBOX_STYLE":        "map.style",
	"CATALOG_TTL":         "catalog.ttl",
	"CATALOG_CACHE_SIZE":  "catalog.cache_size",
	"BREAKER_FAILURES":    "breaker.failures",
	"BREAKER_TIMEOUT":     "breaker.timeout",
	"CORS_ORIGINS":        "http.cors_origins",
	"RATE_LIMIT_REQUESTS": "http.rate_limit_requests",
	"RATE_LIMIT_WINDOW":   "http.rate_limit_window",
	"LOG_LEVEL":           "logging.level",
	"LOG_FORMAT":          "logging.format",
}

// envTransform возвращает ключ конфигурации или пустую строку для посторонних переменных.
func envTransform(key string) string {
	return envMappings[key]
}

// sliceFields приходят из окружения строкой через запятую.
var sliceFields = []string{
	"recommend.stop_words",
	"grades.labels",
	"http.cors_origins",
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceFields {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
