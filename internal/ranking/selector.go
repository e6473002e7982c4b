package ranking

import (
	"sort"

	"github.com/akozadaev/route_scout/internal/models"
)

// DefaultTopK - размер выдачи по умолчанию.
const DefaultTopK = 20

// Select упорядочивает кандидатов по режиму и обрезает выдачу до topK.
// Сортировка стабильная: при равенстве ключей сохраняется исходный порядок.
// Входной срез не изменяется. topK <= 0 отключает обрезку.
func Select(scored []Scored, mode models.OrderMode, topK int) []Scored {
	out := make([]Scored, len(scored))
	copy(out, scored)

	var less func(a, b Scored) bool
	switch mode {
	case models.OrderByPopularity:
		less = func(a, b Scored) bool { return a.Route.Popularity > b.Route.Popularity }
	case models.OrderByQuality:
		less = func(a, b Scored) bool { return a.Route.Quality > b.Route.Quality }
	default:
		less = func(a, b Scored) bool { return a.Score > b.Score }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
