package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/akozadaev/route_scout/internal/logging"
	"github.com/akozadaev/route_scout/internal/metrics"
	"github.com/akozadaev/route_scout/internal/models"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/goccy/go-json"
)

// locationsPageSize - размер страницы при выгрузке каталога местоположений.
// Он же ограничивает число id в одном запросе второй фазы: size запроса
// не может превышать index.max_result_window (по умолчанию 10000).
const locationsPageSize = 5000

// ElasticsearchStorage - хранилище маршрутов в индексе Elasticsearch/OpenSearch.
// Поиск выполняется прямыми HTTP запросами для совместимости с OpenSearch.
type ElasticsearchStorage struct {
	client     *elasticsearch.Client // Официальный клиент Elasticsearch
	index      string                // Имя индекса маршрутов
	httpClient *http.Client          // HTTP клиент для прямых запросов
	baseURL    string                // Базовый URL Elasticsearch/OpenSearch
}

// NewElasticsearchStorageWithURL создает новый экземпляр ElasticsearchStorage с указанным URL.
func NewElasticsearchStorageWithURL(client *elasticsearch.Client, index string, baseURL string) *ElasticsearchStorage {
	return &ElasticsearchStorage{
		client:     client,
		index:      index,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CreateIndex создает индекс с заданным маппингом.
// Если индекс уже существует, функция возвращает nil без ошибки.
func (es *ElasticsearchStorage) CreateIndex(ctx context.Context, mappingJSON string) error {
	res, err := es.client.Indices.Exists([]string{es.index}, es.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = es.client.Indices.Create(
		es.index,
		es.client.Indices.Create.WithBody(strings.NewReader(mappingJSON)),
		es.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error creating index: %s", string(body))
	}

	return nil
}

// PutRoute создает или заменяет документ маршрута и сразу делает его видимым для поиска.
func (es *ElasticsearchStorage) PutRoute(ctx context.Context, route *models.Route) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(route); err != nil {
		return fmt.Errorf("failed to encode route: %w", err)
	}

	path := fmt.Sprintf("/%s/_doc/%d?refresh=wait_for", es.index, route.ID)
	res, err := es.do(ctx, http.MethodPut, path, "application/json", &buf)
	if err != nil {
		return fmt.Errorf("failed to put route %d: %w", route.ID, err)
	}
	defer res.Body.Close()

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	logging.Debug().Int64("route_id", route.ID).Str("result", result.Result).Msg("Route stored")
	return nil
}

// BulkIndexRoutes индексирует несколько маршрутов одним запросом Bulk API.
func (es *ElasticsearchStorage) BulkIndexRoutes(ctx context.Context, routes []*models.Route) error {
	if len(routes) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, route := range routes {
		meta := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": es.index,
				"_id":    strconv.FormatInt(route.ID, 10),
			},
		}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("failed to encode meta: %w", err)
		}
		if err := enc.Encode(route); err != nil {
			return fmt.Errorf("failed to encode route: %w", err)
		}
	}

	res, err := es.do(ctx, http.MethodPost, "/_bulk", "application/x-ndjson", &buf)
	if err != nil {
		return fmt.Errorf("failed to bulk index: %w", err)
	}
	defer res.Body.Close()

	var result struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Reason string `json:"reason"`
			} `json:"error,omitempty"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if result.Errors {
		for _, item := range result.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("error bulk indexing: status %d: %s", op.Status, op.Error.Reason)
				}
			}
		}
		return fmt.Errorf("error bulk indexing")
	}

	return nil
}

// Ping проверяет доступность кластера.
func (es *ElasticsearchStorage) Ping(ctx context.Context) error {
	res, err := es.do(ctx, http.MethodGet, "/", "", nil)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// GetRoute получает маршрут по идентификатору документа.
func (es *ElasticsearchStorage) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	res, err := es.do(ctx, http.MethodGet, fmt.Sprintf("/%s/_doc/%d", es.index, id), "", nil)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	defer res.Body.Close()

	var result struct {
		Found  bool         `json:"found"`
		Source models.Route `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Found {
		return nil, ErrRouteNotFound
	}

	return &result.Source, nil
}

// FetchLocations выгружает id и путь всех маршрутов постранично через search_after.
func (es *ElasticsearchStorage) FetchLocations(ctx context.Context) ([]models.LocationRow, error) {
	defer observe(BackendElasticsearch, "locations", time.Now())

	var (
		locations []models.LocationRow
		after     []interface{}
	)
	for {
		query := map[string]interface{}{
			"size":    locationsPageSize,
			"_source": []string{"id", "location"},
			"query":   map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":    []map[string]interface{}{{"id": map[string]interface{}{"order": "asc"}}},
		}
		if after != nil {
			query["search_after"] = after
		}

		hits, err := es.search(ctx, query)
		if err != nil {
			metrics.StoreErrors.WithLabelValues(BackendElasticsearch, "locations").Inc()
			return nil, fmt.Errorf("failed to fetch locations: %w", err)
		}
		for _, hit := range hits {
			locations = append(locations, models.LocationRow{ID: hit.Source.ID, Location: hit.Source.Location})
		}
		if len(hits) < locationsPageSize {
			return locations, nil
		}
		after = hits[len(hits)-1].Sort
	}
}

// FetchByFilter возвращает маршруты из ids с категорией в диапазоне [gradeMin, gradeMax].
// Список id делится на части не длиннее locationsPageSize, результат упорядочен по id.
func (es *ElasticsearchStorage) FetchByFilter(ctx context.Context, ids []int64, gradeMin, gradeMax int) ([]*models.Route, error) {
	if len(ids) == 0 {
		return []*models.Route{}, nil
	}
	defer observe(BackendElasticsearch, "filter", time.Now())

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	routes := make([]*models.Route, 0, len(sorted))
	for chunk := range slices.Chunk(sorted, locationsPageSize) {
		hits, err := es.search(ctx, buildFilterQuery(chunk, gradeMin, gradeMax))
		if err != nil {
			metrics.StoreErrors.WithLabelValues(BackendElasticsearch, "filter").Inc()
			return nil, fmt.Errorf("failed to fetch routes: %w", err)
		}
		for _, hit := range hits {
			route := hit.Source
			routes = append(routes, &route)
		}
	}
	return routes, nil
}

// buildFilterQuery строит запрос второй фазы: id из списка и категория в диапазоне.
func buildFilterQuery(ids []int64, gradeMin, gradeMax int) map[string]interface{} {
	return map[string]interface{}{
		"size": len(ids),
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"terms": map[string]interface{}{"id": ids}},
					{"range": map[string]interface{}{
						"grade": map[string]interface{}{"gte": gradeMin, "lte": gradeMax},
					}},
				},
			},
		},
		"sort": []map[string]interface{}{{"id": map[string]interface{}{"order": "asc"}}},
	}
}

type searchHit struct {
	Source models.Route  `json:"_source"`
	Sort   []interface{} `json:"sort"`
}

func (es *ElasticsearchStorage) search(ctx context.Context, query map[string]interface{}) ([]searchHit, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := es.do(ctx, http.MethodPost, "/"+es.index+"/_search", "application/json", &buf)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var result struct {
		Hits struct {
			Hits []searchHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Hits.Hits, nil
}

// statusError - ответ кластера с кодом 4xx/5xx.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.status, e.body)
}

func isStatus(err error, status int) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == status
}

// do выполняет прямой HTTP запрос, минуя проверку типа сервера в клиенте.
// При коде ответа >= 400 тело закрывается и возвращается *statusError.
func (es *ElasticsearchStorage) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, es.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := es.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		defer res.Body.Close()
		b, _ := io.ReadAll(res.Body)
		return nil, &statusError{status: res.StatusCode, body: string(b)}
	}
	return res, nil
}

var _ Gateway = (*ElasticsearchStorage)(nil)
