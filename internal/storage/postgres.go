package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akozadaev/route_scout/internal/metrics"
	"github.com/akozadaev/route_scout/internal/models"
	"github.com/lib/pq"
)

const (
	selectLocationsQuery = `SELECT id, loc FROM boulders`

	routeColumns = `id, imgsmall, name, lat, lon, loc, rating, rating_num, description, score, stars, url`

	selectByFilterQuery = `SELECT ` + routeColumns + ` FROM boulders
		WHERE id = ANY($1) AND rating_num BETWEEN $2 AND $3
		ORDER BY id`

	selectRouteQuery = `SELECT ` + routeColumns + ` FROM boulders WHERE id = $1`

	selectAllRoutesQuery = `SELECT ` + routeColumns + ` FROM boulders ORDER BY id`
)

// PostgresStorage - хранилище маршрутов в таблице boulders PostgreSQL.
type PostgresStorage struct {
	db *sql.DB // Подключение к базе данных PostgreSQL
}

// NewPostgresStorage создает новый экземпляр PostgresStorage и устанавливает подключение к БД.
// DSN должен быть в формате: "host=... port=... user=... password=... dbname=... sslmode=..."
func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresStorageFromDB(db), nil
}

// NewPostgresStorageFromDB оборачивает уже открытое подключение.
func NewPostgresStorageFromDB(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// Close закрывает подключение к базе данных PostgreSQL.
func (ps *PostgresStorage) Close() error {
	return ps.db.Close()
}

// Ping проверяет подключение к PostgreSQL.
func (ps *PostgresStorage) Ping(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}

// FetchLocations возвращает id и путь местоположения всех маршрутов.
func (ps *PostgresStorage) FetchLocations(ctx context.Context) ([]models.LocationRow, error) {
	defer observe(BackendPostgres, "locations", time.Now())

	rows, err := ps.db.QueryContext(ctx, selectLocationsQuery)
	if err != nil {
		metrics.StoreErrors.WithLabelValues(BackendPostgres, "locations").Inc()
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	locations, err := scanLocations(rows)
	if err != nil {
		metrics.StoreErrors.WithLabelValues(BackendPostgres, "locations").Inc()
		return nil, err
	}
	return locations, nil
}

// FetchByFilter возвращает маршруты с id из списка в диапазоне категорий включительно.
// Пустой список id не приводит к запросу.
func (ps *PostgresStorage) FetchByFilter(ctx context.Context, ids []int64, gradeMin, gradeMax int) ([]*models.Route, error) {
	if len(ids) == 0 {
		return []*models.Route{}, nil
	}
	defer observe(BackendPostgres, "filter", time.Now())

	rows, err := ps.db.QueryContext(ctx, selectByFilterQuery, pq.Array(ids), gradeMin, gradeMax)
	if err != nil {
		metrics.StoreErrors.WithLabelValues(BackendPostgres, "filter").Inc()
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	routes, err := scanRoutes(rows)
	if err != nil {
		metrics.StoreErrors.WithLabelValues(BackendPostgres, "filter").Inc()
		return nil, err
	}
	return routes, nil
}

// GetRoute возвращает маршрут по идентификатору.
func (ps *PostgresStorage) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	rows, err := ps.db.QueryContext(ctx, selectRouteQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query route: %w", err)
	}
	defer rows.Close()

	routes, err := scanRoutes(rows)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, ErrRouteNotFound
	}
	return routes[0], nil
}

// ListRoutes возвращает все маршруты. Используется индексатором.
func (ps *PostgresStorage) ListRoutes(ctx context.Context) ([]*models.Route, error) {
	rows, err := ps.db.QueryContext(ctx, selectAllRoutesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	return scanRoutes(rows)
}

func scanLocations(rows *sql.Rows) ([]models.LocationRow, error) {
	var locations []models.LocationRow
	for rows.Next() {
		var row models.LocationRow
		if err := rows.Scan(&row.ID, pq.Array(&row.Location)); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return locations, nil
}

func scanRoutes(rows *sql.Rows) ([]*models.Route, error) {
	routes := []*models.Route{}
	for rows.Next() {
		var (
			r           models.Route
			image, url  sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(
			&r.ID,
			&image,
			&r.Name,
			&r.Coordinates.Lat,
			&r.Coordinates.Lon,
			pq.Array(&r.Location),
			&r.Rating,
			&r.Grade,
			&description,
			&r.Quality,
			&r.Popularity,
			&url,
		); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		r.Image = image.String
		r.Description = description.String
		r.URL = url.String
		routes = append(routes, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return routes, nil
}

func observe(backend, phase string, start time.Time) {
	metrics.StoreQueryDuration.WithLabelValues(backend, phase).Observe(time.Since(start).Seconds())
}

var _ Gateway = (*PostgresStorage)(nil)
