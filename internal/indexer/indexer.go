// Package indexer переносит маршруты в индекс Elasticsearch пачками,
// загружая пачки параллельно пулом горутин.
package indexer

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
	"github.com/panjf2000/ants/v2"

	"github.com/akozadaev/route_scout/internal/logging"
	"github.com/akozadaev/route_scout/internal/models"
)

// Значения по умолчанию для флагов командной строки.
const (
	DefaultBatchSize = 500
	DefaultWorkers   = 4
)

// BulkIndexer принимает пачку маршрутов. Реализуется storage.ElasticsearchStorage.
type BulkIndexer interface {
	BulkIndexRoutes(ctx context.Context, routes []*models.Route) error
}

// Uploader делит маршруты на пачки и отправляет их параллельно.
type Uploader struct {
	sink      BulkIndexer
	batchSize int
	workers   int
}

// NewUploader создает загрузчик. Неположительные значения заменяются значениями по умолчанию.
func NewUploader(sink BulkIndexer, batchSize, workers int) *Uploader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Uploader{sink: sink, batchSize: batchSize, workers: workers}
}

// Upload отправляет все маршруты и возвращает число проиндексированных.
// Первая ошибка отменяет еще не начатые пачки.
func (u *Uploader) Upload(ctx context.Context, routes []*models.Route) (int, error) {
	if len(routes) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(u.workers)
	if err != nil {
		return 0, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		indexed  int
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(routes); start += u.batchSize {
		end := min(start+u.batchSize, len(routes))
		batch := routes[start:end]
		from := start

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := u.sink.BulkIndexRoutes(ctx, batch); err != nil {
				fail(fmt.Errorf("batch starting at %d: %w", from, err))
				return
			}
			mu.Lock()
			indexed += len(batch)
			mu.Unlock()
			logging.Debug().Int("from", from).Int("size", len(batch)).Msg("Batch indexed")
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("failed to submit batch: %w", submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr == nil && parent.Err() != nil {
		firstErr = parent.Err()
	}
	return indexed, firstErr
}

// LoadFile читает маршруты из JSON файла с массивом объектов models.Route.
func LoadFile(path string) ([]*models.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var routes []*models.Route
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, r := range routes {
		if r == nil {
			return nil, fmt.Errorf("route #%d is null", i)
		}
		if err := checkRoute(r); err != nil {
			return nil, fmt.Errorf("route #%d: %w", i, err)
		}
	}
	return routes, nil
}

// LoadRoute читает один маршрут из JSON файла.
func LoadRoute(path string) (*models.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var route models.Route
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := checkRoute(&route); err != nil {
		return nil, err
	}
	return &route, nil
}

func checkRoute(r *models.Route) error {
	if r.ID == 0 {
		return fmt.Errorf("route has no id")
	}
	if len(r.Location) == 0 {
		return fmt.Errorf("route %d has empty location", r.ID)
	}
	return nil
}
