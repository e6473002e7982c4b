// Package location реализует иерархический индекс местоположений маршрутов.
//
// Путь маршрута упорядочен от общего к частному, например
// ["USA", "California", "Yosemite"]. Expand разворачивает его во все префиксы,
// поэтому выбор "USA, California" находит все маршруты внутри штата, а выбор
// полного пути - только конкретный сектор.
package location

import (
	"sort"
	"strings"

	"github.com/akozadaev/route_scout/internal/models"
)

// Separator соединяет уровни пути в одну строку области.
const Separator = ", "

// Expand возвращает накопительные префиксы пути: для пути длины N ровно N строк,
// последняя из которых - полный путь.
func Expand(path []string) []string {
	expanded := make([]string, 0, len(path))
	for i := range path {
		expanded = append(expanded, strings.Join(path[:i+1], Separator))
	}
	return expanded
}

// MatchesAny возвращает true, если хотя бы одна выбранная область в точности
// совпадает с одним из префиксов. Пустой выбор не совпадает ни с чем:
// подстановка области по умолчанию - забота вызывающего.
func MatchesAny(selected []string, expanded []string) bool {
	for _, area := range selected {
		for _, prefix := range expanded {
			if area == prefix {
				return true
			}
		}
	}
	return false
}

// Filter возвращает идентификаторы строк, путь которых попадает в выбранные области.
// Порядок строк сохраняется.
func Filter(rows []models.LocationRow, selected []string) []int64 {
	ids := make([]int64, 0)
	if len(selected) == 0 {
		return ids
	}
	for _, row := range rows {
		if MatchesAny(selected, Expand(row.Location)) {
			ids = append(ids, row.ID)
		}
	}
	return ids
}

// Areas собирает все адресуемые области каталога без повторов.
// Сортировка по длине строки, затем лексикографически, так что страны идут
// раньше регионов, а регионы раньше секторов.
func Areas(rows []models.LocationRow) []string {
	seen := make(map[string]struct{})
	areas := make([]string, 0)
	for _, row := range rows {
		for _, area := range Expand(row.Location) {
			if _, ok := seen[area]; ok {
				continue
			}
			seen[area] = struct{}{}
			areas = append(areas, area)
		}
	}
	sort.Slice(areas, func(i, j int) bool {
		if len(areas[i]) != len(areas[j]) {
			return len(areas[i]) < len(areas[j])
		}
		return areas[i] < areas[j]
	})
	return areas
}

// Tail возвращает последние n уровней пути, соединенные разделителем.
func Tail(path []string, n int) string {
	if n < len(path) {
		path = path[len(path)-n:]
	}
	return strings.Join(path, Separator)
}
