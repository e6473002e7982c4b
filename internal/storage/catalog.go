package storage

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/akozadaev/route_scout/internal/location"
	"github.com/akozadaev/route_scout/internal/metrics"
	"github.com/akozadaev/route_scout/internal/models"
)

// DefaultSelectionCacheSize - число запоминаемых наборов выбранных областей.
const DefaultSelectionCacheSize = 256

const catalogKey = "locations"

// Catalog отвечает за первую фазу подбора: каталог местоположений и
// отбор id по выбранным областям. Каталог кэшируется на TTL, повторные
// наборы областей - в LRU того же срока жизни. Ключ отбора включает
// поколение каталога, поэтому отбор по прежним строкам не переживает
// перечитывание.
type Catalog struct {
	gateway Gateway
	ttl     time.Duration

	mu         sync.Mutex
	generation uint64
	rows       *expirable.LRU[string, []models.LocationRow]
	selections *expirable.LRU[string, []int64]
}

// NewCatalog создает каталог поверх gateway. При ttl == 0 каждый вызов
// обращается к хранилищу.
func NewCatalog(gateway Gateway, ttl time.Duration, size int) *Catalog {
	if size <= 0 {
		size = DefaultSelectionCacheSize
	}
	c := &Catalog{gateway: gateway, ttl: ttl}
	if ttl > 0 {
		c.rows = expirable.NewLRU[string, []models.LocationRow](1, nil, ttl)
		c.selections = expirable.NewLRU[string, []int64](size, nil, ttl)
	}
	return c
}

// Locations возвращает каталог пар (id, путь).
func (c *Catalog) Locations(ctx context.Context) ([]models.LocationRow, error) {
	rows, _, err := c.snapshot(ctx)
	return rows, err
}

// snapshot возвращает строки каталога вместе с их поколением.
func (c *Catalog) snapshot(ctx context.Context) ([]models.LocationRow, uint64, error) {
	if c.rows == nil {
		rows, err := c.gateway.FetchLocations(ctx)
		return rows, 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if rows, ok := c.rows.Get(catalogKey); ok {
		metrics.CatalogCacheHits.Inc()
		return rows, c.generation, nil
	}
	metrics.CatalogCacheMisses.Inc()

	rows, err := c.gateway.FetchLocations(ctx)
	if err != nil {
		return nil, 0, err
	}
	c.generation++
	c.selections.Purge()
	c.rows.Add(catalogKey, rows)
	return rows, c.generation, nil
}

// Select возвращает id маршрутов, попадающих в любую из выбранных областей.
func (c *Catalog) Select(ctx context.Context, areas []string) ([]int64, error) {
	rows, gen, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if c.selections == nil {
		return location.Filter(rows, areas), nil
	}

	key := selectionKey(gen, areas)
	if ids, ok := c.selections.Get(key); ok {
		return ids, nil
	}
	ids := location.Filter(rows, areas)
	c.selections.Add(key, ids)
	return ids, nil
}

// Areas возвращает все адресуемые области каталога.
func (c *Catalog) Areas(ctx context.Context) ([]string, error) {
	rows, err := c.Locations(ctx)
	if err != nil {
		return nil, err
	}
	return location.Areas(rows), nil
}

// Refresh сбрасывает кэш и сразу перечитывает каталог.
// Возвращает число строк нового каталога.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	if c.rows != nil {
		c.mu.Lock()
		c.rows.Purge()
		c.selections.Purge()
		c.mu.Unlock()
	}
	rows, err := c.Locations(ctx)
	return len(rows), err
}

// selectionKey не зависит от порядка и повторов областей.
func selectionKey(generation uint64, areas []string) string {
	sorted := slices.Clone(areas)
	slices.Sort(sorted)
	return strconv.FormatUint(generation, 10) + "\x1e" + strings.Join(slices.Compact(sorted), "\x1f")
}
