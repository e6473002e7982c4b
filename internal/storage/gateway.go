// Package storage содержит реализации хранилища маршрутов для PostgreSQL и
// Elasticsearch/OpenSearch, а также обертки: автоматический выключатель и кэш
// каталога местоположений.
package storage

import (
	"context"
	"errors"

	"github.com/akozadaev/route_scout/internal/models"
)

// Имена хранилищ для меток метрик.
const (
	BackendPostgres      = "postgres"
	BackendElasticsearch = "elasticsearch"
)

// ErrRouteNotFound возвращается, когда маршрута с указанным ID нет в хранилище.
var ErrRouteNotFound = errors.New("route not found")

// Gateway - источник маршрутов-кандидатов. Запрос выполняется в две фазы:
// сначала все пары (id, путь) для иерархической фильтрации по области,
// затем полные записи для отобранных id в диапазоне категорий.
type Gateway interface {
	// FetchLocations возвращает id и путь местоположения всех маршрутов.
	FetchLocations(ctx context.Context) ([]models.LocationRow, error)
	// FetchByFilter возвращает маршруты из ids с gradeMin <= grade <= gradeMax.
	FetchByFilter(ctx context.Context, ids []int64, gradeMin, gradeMax int) ([]*models.Route, error)
	// GetRoute возвращает маршрут по id или ErrRouteNotFound.
	GetRoute(ctx context.Context, id int64) (*models.Route, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}
