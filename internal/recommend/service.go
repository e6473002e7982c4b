// Package recommend собирает подбор маршрутов в один конвейер: проверка
// запроса, отбор по областям, выборка по категориям, ранжирование по тексту,
// сортировка и построение данных для карты и списка.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akozadaev/route_scout/internal/location"
	"github.com/akozadaev/route_scout/internal/logging"
	"github.com/akozadaev/route_scout/internal/metrics"
	"github.com/akozadaev/route_scout/internal/models"
	"github.com/akozadaev/route_scout/internal/ranking"
	"github.com/akozadaev/route_scout/internal/storage"
	"github.com/akozadaev/route_scout/internal/validation"
)

var (
	// ErrInvalidRequest - запрос не прошел проверку. Оборачивает *validation.RequestValidationError.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrStoreUnavailable - хранилище маршрутов вернуло ошибку.
	ErrStoreUnavailable = errors.New("route store unavailable")
)

// Уровни масштаба карты по разбросу координат выдачи.
const (
	zoomWide   = 5
	zoomMedium = 8
	zoomClose  = 11
)

// cardAreaDepth - сколько последних уровней пути показывать в карточке.
const cardAreaDepth = 2

// Config - параметры подбора.
type Config struct {
	DefaultArea    string
	TopK           int
	Grades         []models.GradeMark // Шкала категорий по возрастанию, не пустая
	MapStyle       string
	MapAccessToken string
}

// Service выполняет подбор маршрутов.
type Service struct {
	gateway storage.Gateway
	catalog *storage.Catalog
	ranker  *ranking.Ranker
	cfg     Config
}

// NewService создает сервис. Каталог должен быть построен поверх того же gateway.
func NewService(gateway storage.Gateway, catalog *storage.Catalog, ranker *ranking.Ranker, cfg Config) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = ranking.DefaultTopK
	}
	if ranker == nil {
		ranker = ranking.NewRanker(nil)
	}
	return &Service{gateway: gateway, catalog: catalog, ranker: ranker, cfg: cfg}
}

// Recommend подбирает маршруты под запрос. Ошибки проверки оборачивают
// ErrInvalidRequest, ошибки хранилища - ErrStoreUnavailable.
func (s *Service) Recommend(ctx context.Context, req models.RecommendRequest) (*models.RecommendResponse, error) {
	req.GradeFloor = s.cfg.Grades[0].Grade
	req.GradeCeil = s.cfg.Grades[len(s.cfg.Grades)-1].Grade
	if err := validation.ValidateStruct(req); err != nil {
		metrics.RecommendRequests.WithLabelValues("unknown", "invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	mode, _ := models.ParseOrderMode(req.Order)
	areas := req.Areas
	if len(areas) == 0 {
		areas = []string{s.cfg.DefaultArea}
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.cfg.TopK
	}

	log := logging.Ctx(ctx)

	ids, err := s.catalog.Select(ctx, areas)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues(string(mode), "store_error").Inc()
		log.Error().Err(err).Msg("Failed to select routes by area")
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	candidates := []*models.Route{}
	if len(ids) > 0 {
		candidates, err = s.gateway.FetchByFilter(ctx, ids, req.GradeMin, req.GradeMax)
	}
	if err != nil {
		metrics.RecommendRequests.WithLabelValues(string(mode), "store_error").Inc()
		log.Error().Err(err).Int("ids", len(ids)).Msg("Failed to fetch candidate routes")
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	metrics.CandidatesPerQuery.Observe(float64(len(candidates)))

	start := time.Now()
	scored := s.ranker.Rank(candidates, req.Description)
	metrics.RankDuration.Observe(time.Since(start).Seconds())

	selected := ranking.Select(scored, mode, limit)

	log.Debug().
		Strs("areas", areas).
		Int("area_matches", len(ids)).
		Int("candidates", len(candidates)).
		Int("selected", len(selected)).
		Str("order", string(mode)).
		Msg("Recommendation computed")
	metrics.RecommendRequests.WithLabelValues(string(mode), "ok").Inc()

	return &models.RecommendResponse{
		Routes: BuildCards(selected),
		Map:    s.BuildMap(selected),
		Total:  len(selected),
	}, nil
}

// Route возвращает маршрут по id.
func (s *Service) Route(ctx context.Context, id int64) (*models.Route, error) {
	route, err := s.gateway.GetRoute(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRouteNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return route, nil
}

// Areas возвращает каталог областей для выбора.
func (s *Service) Areas(ctx context.Context) ([]string, error) {
	areas, err := s.catalog.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return areas, nil
}

// Grades возвращает подписи категорий шкалы.
func (s *Service) Grades() []models.GradeMark {
	return s.cfg.Grades
}

// Ready проверяет доступность хранилища.
func (s *Service) Ready(ctx context.Context) error {
	return s.gateway.Ping(ctx)
}

// BuildCards строит карточки в порядке выдачи.
func BuildCards(selected []ranking.Scored) []models.RouteCard {
	cards := make([]models.RouteCard, len(selected))
	for i, s := range selected {
		r := s.Route
		cards[i] = models.RouteCard{
			ID:          r.ID,
			Image:       r.Image,
			Name:        r.Name,
			Rating:      r.Rating,
			Quality:     r.Quality,
			Area:        location.Tail(r.Location, cardAreaDepth),
			Description: r.Description,
			URL:         r.URL,
			Score:       s.Score,
		}
	}
	return cards
}

// BuildMap строит слой карты: первые в выдаче точки крупнее, центр - среднее
// координат, масштаб зависит от наибольшего разброса по широте или долготе.
func (s *Service) BuildMap(selected []ranking.Scored) models.MapLayer {
	layer := models.MapLayer{
		Points:      make([]models.MapPoint, len(selected)),
		Zoom:        zoomWide,
		Style:       s.cfg.MapStyle,
		AccessToken: s.cfg.MapAccessToken,
	}
	if len(selected) == 0 {
		return layer
	}

	first := selected[0].Route.Coordinates
	minLat, maxLat := first.Lat, first.Lat
	minLon, maxLon := first.Lon, first.Lon
	var sumLat, sumLon float64

	for i, sc := range selected {
		r := sc.Route
		c := r.Coordinates
		layer.Points[i] = models.MapPoint{
			ID:         r.ID,
			Position:   c,
			Label:      pointLabel(r),
			MarkerSize: 10 + (10 - float64(i)/2),
		}
		sumLat += c.Lat
		sumLon += c.Lon
		minLat, maxLat = min(minLat, c.Lat), max(maxLat, c.Lat)
		minLon, maxLon = min(minLon, c.Lon), max(maxLon, c.Lon)
	}

	n := float64(len(selected))
	layer.Center = models.GeoPoint{Lat: sumLat / n, Lon: sumLon / n}
	layer.Zoom = zoomFor(max(maxLat-minLat, maxLon-minLon))
	return layer
}

func zoomFor(span float64) int {
	switch {
	case span > 1.5:
		return zoomWide
	case span < 0.5:
		return zoomClose
	default:
		return zoomMedium
	}
}

func pointLabel(r *models.Route) string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteString(", ")
	b.WriteString(r.Rating)
	b.WriteString("\nStars: ")
	b.WriteString(strconv.FormatFloat(r.Quality, 'f', -1, 64))
	b.WriteString("\n")
	b.WriteString(location.Tail(r.Location, cardAreaDepth))
	return b.String()
}
