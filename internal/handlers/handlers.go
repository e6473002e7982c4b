// Package handlers содержит HTTP обработчики REST API подбора маршрутов.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/akozadaev/route_scout/internal/logging"
	"github.com/akozadaev/route_scout/internal/models"
	"github.com/akozadaev/route_scout/internal/recommend"
	"github.com/akozadaev/route_scout/internal/storage"
	"github.com/akozadaev/route_scout/internal/validation"
)

// Значения по умолчанию для GET /routes/recommend совпадают с начальным положением ползунка в веб-интерфейсе.
const (
	defaultGradeMin = 1
	defaultGradeMax = 3
)

// maxBodyBytes ограничивает размер тела запроса рекомендаций.
const maxBodyBytes = 1 << 20

// Recommender - операции, которые обработчики вызывают у сервиса подбора.
type Recommender interface {
	Recommend(ctx context.Context, req models.RecommendRequest) (*models.RecommendResponse, error)
	Route(ctx context.Context, id int64) (*models.Route, error)
	Areas(ctx context.Context) ([]string, error)
	Grades() []models.GradeMark
	Ready(ctx context.Context) error
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// Handlers содержит зависимости для обработки HTTP запросов.
type Handlers struct {
	service Recommender
}

// NewHandlers создает новый экземпляр Handlers.
func NewHandlers(service Recommender) *Handlers {
	return &Handlers{service: service}
}

// Register регистрирует маршруты API в роутере.
func (h *Handlers) Register(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.Ready).Methods(http.MethodGet)
	router.HandleFunc("/routes/recommend", h.RecommendRoutes).Methods(http.MethodPost)
	router.HandleFunc("/routes/recommend", h.RecommendRoutesQuery).Methods(http.MethodGet)
	router.HandleFunc("/routes/{id}", h.GetRoute).Methods(http.MethodGet)
	router.HandleFunc("/areas", h.GetAreas).Methods(http.MethodGet)
	router.HandleFunc("/grades", h.GetGrades).Methods(http.MethodGet)
}

// RecommendRoutes обрабатывает POST запрос на подбор маршрутов.
// Эндпоинт: POST /routes/recommend
//
// @Summary      Подобрать маршруты
// @Description  Возвращает маршруты из выбранных областей в диапазоне категорий, упорядоченные по текстовой близости к описанию, популярности или оценке. Ответ содержит карточки и слой карты.
// @Tags         routes
// @Accept       json
// @Produce      json
// @Param        request  body      models.RecommendRequest  true  "Параметры подбора"
// @Success      200      {object}  models.RecommendResponse
// @Failure      400      {object}  handlers.ErrorResponse  "Неверный запрос"
// @Failure      503      {object}  handlers.ErrorResponse  "Хранилище недоступно"
// @Router       /routes/recommend [post]
func (h *Handlers) RecommendRoutes(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	h.recommend(w, r, req)
}

// RecommendRoutesQuery - тот же подбор с параметрами в строке запроса.
// Эндпоинт: GET /routes/recommend
//
// @Summary      Подобрать маршруты (GET)
// @Description  Вариант подбора для ссылок и отладки. Без grade_min и grade_max используется диапазон [1, 3].
// @Tags         routes
// @Produce      json
// @Param        grade_min  query     int     false  "Нижняя категория"
// @Param        grade_max  query     int     false  "Верхняя категория"
// @Param        area       query     []string  false  "Область, можно несколько"  collectionFormat(multi)
// @Param        q          query     string  false  "Описание желаемого маршрута"
// @Param        order      query     string  false  "relevance, popularity или quality"
// @Param        limit      query     int     false  "Размер выдачи"
// @Success      200        {object}  models.RecommendResponse
// @Failure      400        {object}  handlers.ErrorResponse  "Неверный запрос"
// @Failure      503        {object}  handlers.ErrorResponse  "Хранилище недоступно"
// @Router       /routes/recommend [get]
func (h *Handlers) RecommendRoutesQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.RecommendRequest{
		GradeMin:    defaultGradeMin,
		GradeMax:    defaultGradeMax,
		Areas:       q["area"],
		Description: q.Get("q"),
		Order:       q.Get("order"),
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"grade_min", &req.GradeMin},
		{"grade_max", &req.GradeMax},
		{"limit", &req.Limit},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorResponse{Error: p.name + " must be an integer"})
			return
		}
		*p.dst = v
	}

	h.recommend(w, r, req)
}

func (h *Handlers) recommend(w http.ResponseWriter, r *http.Request, req models.RecommendRequest) {
	resp, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		var verr *validation.RequestValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Fields: verr.Fields})
		case errors.Is(err, recommend.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Route store unavailable"})
		default:
			logging.Ctx(r.Context()).Error().Err(err).Msg("Error recommending routes")
			writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// GetRoute обрабатывает GET запрос на получение маршрута по ID.
// Эндпоинт: GET /routes/{id}
//
// @Summary      Получить маршрут
// @Description  Возвращает полную информацию о маршруте по его идентификатору
// @Tags         routes
// @Produce      json
// @Param        id   path      int  true  "Идентификатор маршрута"
// @Success      200  {object}  models.Route
// @Failure      400  {object}  handlers.ErrorResponse  "Неверный идентификатор"
// @Failure      404  {object}  handlers.ErrorResponse  "Маршрут не найден"
// @Failure      503  {object}  handlers.ErrorResponse  "Хранилище недоступно"
// @Router       /routes/{id} [get]
func (h *Handlers) GetRoute(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Route ID must be an integer"})
		return
	}

	route, err := h.service.Route(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrRouteNotFound) {
			writeError(w, http.StatusNotFound, ErrorResponse{Error: "Route not found"})
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Int64("route_id", id).Msg("Error getting route")
		writeError(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Route store unavailable"})
		return
	}

	writeJSON(w, r, http.StatusOK, route)
}

// GetAreas обрабатывает GET запрос на получение каталога областей.
// Эндпоинт: GET /areas
//
// @Summary      Получить список областей
// @Description  Возвращает все области для отбора маршрутов в виде путей через запятую, от общих к частным
// @Tags         areas
// @Produce      json
// @Success      200  {array}   string
// @Failure      503  {object}  handlers.ErrorResponse  "Хранилище недоступно"
// @Router       /areas [get]
func (h *Handlers) GetAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.service.Areas(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Error getting areas")
		writeError(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Route store unavailable"})
		return
	}

	writeJSON(w, r, http.StatusOK, areas)
}

// GetGrades обрабатывает GET запрос на получение шкалы категорий.
// Эндпоинт: GET /grades
//
// @Summary      Получить шкалу категорий
// @Description  Возвращает числовые коды категорий сложности и их подписи
// @Tags         grades
// @Produce      json
// @Success      200  {array}   models.GradeMark
// @Router       /grades [get]
func (h *Handlers) GetGrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.service.Grades())
}

// HealthCheck обрабатывает GET запрос на проверку работоспособности сервиса.
// Эндпоинт: GET /health
//
// @Summary      Проверка работоспособности сервиса
// @Description  Возвращает статус сервиса. Используется для мониторинга и проверки доступности.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready проверяет доступность хранилища маршрутов.
// Эндпоинт: GET /ready
//
// @Summary      Проверка готовности
// @Description  Возвращает 200, если хранилище маршрутов отвечает
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /ready [get]
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Error encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
