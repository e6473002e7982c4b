// Package ranking ранжирует маршруты-кандидаты по текстовой близости описаний
// к запросу пользователя и отбирает итоговую выдачу.
//
// Векторное пространство TF-IDF строится заново на каждый запрос по корпусу
// из N описаний кандидатов и самого запроса (последним документом). Запрос
// участвует в расчете обратной документной частоты, поэтому его нельзя
// проецировать в словарь, построенный только по кандидатам.
package ranking

import (
	"math"
	"regexp"
	"sort"

	"github.com/akozadaev/route_scout/internal/models"
	"github.com/akozadaev/route_scout/internal/textnorm"
)

// Scored - кандидат с оценкой близости к запросу в пределах одного ранжирования.
type Scored struct {
	Route *models.Route
	Score float64
}

// tokenPattern выделяет термы из двух и более словесных символов (буквы любых
// алфавитов, цифры, подчеркивание). Однобуквенные токены отбрасываются.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// Ranker вычисляет косинусную близость описаний маршрутов к запросу.
type Ranker struct {
	normalizer *textnorm.Normalizer
}

// NewRanker создает Ranker. При nil используется нормализатор со стоп-словами по умолчанию.
func NewRanker(normalizer *textnorm.Normalizer) *Ranker {
	if normalizer == nil {
		normalizer = textnorm.New(nil)
	}
	return &Ranker{normalizer: normalizer}
}

// Rank возвращает кандидатов в исходном порядке вместе с оценками.
// Для пустого списка кандидатов возвращается пустой результат.
func (r *Ranker) Rank(candidates []*models.Route, queryText string) []Scored {
	if len(candidates) == 0 {
		return []Scored{}
	}

	docs := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		docs = append(docs, r.normalizer.Normalize(c.Description))
	}
	docs = append(docs, r.normalizer.Normalize(queryText))

	vectors := fitTransform(docs)
	query := vectors[len(vectors)-1]

	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{Route: c, Score: cosine(query, vectors[i])}
	}
	return scored
}

// vector - разреженный L2-нормированный вектор документа, индексы термов по возрастанию.
type vector struct {
	terms   []int
	weights []float64
}

// fitTransform строит словарь по корпусу и возвращает TF-IDF векторы всех документов.
// idf сглаженный: ln((1+n)/(1+df)) + 1.
func fitTransform(docs []string) []vector {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, tok := range tokenPattern.FindAllString(doc, -1) {
			counts[i][tok]++
		}
		for tok := range counts[i] {
			df[tok]++
		}
	}

	vocab := make([]string, 0, len(df))
	for tok := range df {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)
	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(docs))
	for i, tok := range vocab {
		index[tok] = i
		idf[i] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}

	vectors := make([]vector, len(docs))
	for i, tf := range counts {
		v := vector{
			terms:   make([]int, 0, len(tf)),
			weights: make([]float64, 0, len(tf)),
		}
		for tok := range tf {
			v.terms = append(v.terms, index[tok])
		}
		sort.Ints(v.terms)

		var norm float64
		for _, t := range v.terms {
			w := float64(tf[vocab[t]]) * idf[t]
			v.weights = append(v.weights, w)
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range v.weights {
				v.weights[j] /= norm
			}
		}
		vectors[i] = v
	}
	return vectors
}

// cosine - скалярное произведение нормированных векторов. Нулевой вектор дает 0.
func cosine(a, b vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.terms) && j < len(b.terms) {
		switch {
		case a.terms[i] == b.terms[j]:
			dot += a.weights[i] * b.weights[j]
			i++
			j++
		case a.terms[i] < b.terms[j]:
			i++
		default:
			j++
		}
	}
	// Ошибка округления не должна выводить оценку за пределы [0, 1]
	return math.Min(dot, 1)
}
