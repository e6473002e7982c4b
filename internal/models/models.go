package models

import "strings"

// Route представляет скалолазный маршрут (боулдер) из таблицы boulders
type Route struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Coordinates GeoPoint `json:"coordinates"`
	Location    []string `json:"location"`
	Grade       int      `json:"grade"`
	Rating      string   `json:"rating"`
	Description string   `json:"description"`
	Popularity  int      `json:"popularity"`
	Quality     float64  `json:"quality"`
	Image       string   `json:"image,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// GeoPoint представляет географические координаты
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationRow - проекция маршрута для первой фазы запроса (только id и путь)
type LocationRow struct {
	ID       int64    `json:"id"`
	Location []string `json:"location"`
}

// OrderMode задает вторичный порядок выдачи
type OrderMode string

const (
	OrderByRelevance  OrderMode = "relevance"
	OrderByPopularity OrderMode = "popularity"
	OrderByQuality    OrderMode = "quality"
)

// ParseOrderMode разбирает режим сортировки. Принимает также подписи
// переключателя из веб-интерфейса. Пустая строка означает релевантность.
func ParseOrderMode(s string) (OrderMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relevance", "closest match":
		return OrderByRelevance, true
	case "popularity", "most popular":
		return OrderByPopularity, true
	case "quality", "highest rated":
		return OrderByQuality, true
	}
	return "", false
}

// RecommendRequest представляет запрос на рекомендацию маршрутов
type RecommendRequest struct {
	GradeMin    int      `json:"grade_min" validate:"gtefield=GradeFloor,ltefield=GradeMax"`
	GradeMax    int      `json:"grade_max" validate:"ltefield=GradeCeil"`
	Areas       []string `json:"areas,omitempty" validate:"dive,required"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Order       string   `json:"order,omitempty" validate:"omitempty,order"`
	Limit       int      `json:"limit,omitempty" validate:"gte=0,lte=100"`

	// Границы шкалы категорий, подставляются из конфигурации перед валидацией
	GradeFloor int `json:"-"`
	GradeCeil  int `json:"-"`
}

// RouteCard - карточка маршрута для списка под картой
type RouteCard struct {
	ID          int64   `json:"id"`
	Image       string  `json:"image,omitempty"`
	Name        string  `json:"name"`
	Rating      string  `json:"rating"`
	Quality     float64 `json:"quality"`
	Area        string  `json:"area"`
	Description string  `json:"description"`
	URL         string  `json:"url,omitempty"`
	Score       float64 `json:"score"`
}

// MapPoint - одна точка слоя карты
type MapPoint struct {
	ID         int64    `json:"id"`
	Position   GeoPoint `json:"position"`
	Label      string   `json:"label"`
	MarkerSize float64  `json:"marker_size"`
}

// MapLayer - данные для отрисовки карты на клиенте
type MapLayer struct {
	Points      []MapPoint `json:"points"`
	Center      GeoPoint   `json:"center"`
	Zoom        int        `json:"zoom"`
	Style       string     `json:"style,omitempty"`
	AccessToken string     `json:"access_token,omitempty"`
}

// RecommendResponse представляет ответ с рекомендациями
type RecommendResponse struct {
	Routes []RouteCard `json:"routes"`
	Map    MapLayer    `json:"map"`
	Total  int         `json:"total"`
}

// GradeMark - подпись категории сложности для шкалы
type GradeMark struct {
	Grade int    `json:"grade"`
	Label string `json:"label"`
}
