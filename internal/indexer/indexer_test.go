package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozadaev/route_scout/internal/models"
)

type recordingSink struct {
	mu      sync.Mutex
	batches [][]int64
	failOn  int64
}

func (s *recordingSink) BulkIndexRoutes(_ context.Context, routes []*models.Route) error {
	ids := make([]int64, len(routes))
	for i, r := range routes {
		ids[i] = r.ID
		if r.ID == s.failOn {
			return errors.New("mapper_parsing_exception")
		}
	}
	s.mu.Lock()
	s.batches = append(s.batches, ids)
	s.mu.Unlock()
	return nil
}

func makeRoutes(n int) []*models.Route {
	routes := make([]*models.Route, n)
	for i := range routes {
		routes[i] = &models.Route{ID: int64(i + 1), Location: []string{"USA"}}
	}
	return routes
}

func TestUpload_Batches(t *testing.T) {
	sink := &recordingSink{}
	u := NewUploader(sink, 3, 2)

	n, err := u.Upload(context.Background(), makeRoutes(10))
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	require.Len(t, sink.batches, 4)
	sizes := make([]int, len(sink.batches))
	var all []int
	for i, b := range sink.batches {
		sizes[i] = len(b)
		for _, id := range b {
			all = append(all, int(id))
		}
	}
	sort.Ints(sizes)
	sort.Ints(all)
	assert.Equal(t, []int{1, 3, 3, 3}, sizes)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, all)
}

func TestUpload_Empty(t *testing.T) {
	n, err := NewUploader(&recordingSink{}, 0, 0).Upload(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpload_Error(t *testing.T) {
	sink := &recordingSink{failOn: 5}
	n, err := NewUploader(sink, 2, 1).Upload(context.Background(), makeRoutes(8))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
	assert.Less(t, n, 8)
}

func TestUpload_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := NewUploader(&recordingSink{}, 2, 2).Upload(ctx, makeRoutes(4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestNewUploader_Defaults(t *testing.T) {
	u := NewUploader(&recordingSink{}, -1, 0)
	assert.Equal(t, DefaultBatchSize, u.batchSize)
	assert.Equal(t, DefaultWorkers, u.workers)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "routes.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
		{"id": 1, "name": "Midnight Lightning", "location": ["USA", "California", "Yosemite"], "grade": 9,
		 "rating": "V8", "description": "Iconic", "popularity": 120, "quality": 4.8,
		 "coordinates": {"lat": 37.74, "lon": -119.6}}
	]`), 0o600))

	routes, err := LoadFile(good)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "Midnight Lightning", routes[0].Name)
	assert.Equal(t, 9, routes[0].Grade)
	assert.InDelta(t, -119.6, routes[0].Coordinates.Lon, 1e-9)

	noLoc := filepath.Join(dir, "noloc.json")
	require.NoError(t, os.WriteFile(noLoc, []byte(`[{"id": 2, "location": []}]`), 0o600))
	_, err = LoadFile(noLoc)
	assert.ErrorContains(t, err, "empty location")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`[{"id": `), 0o600))
	_, err = LoadFile(broken)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadRoute(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "route.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"id": 42, "name": "The Mandala",
		"location": ["USA", "California", "Bishop"], "grade": 12, "rating": "V12"}`), 0o600))

	route, err := LoadRoute(good)
	require.NoError(t, err)
	assert.Equal(t, int64(42), route.ID)
	assert.Equal(t, []string{"USA", "California", "Bishop"}, route.Location)

	noID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(noID, []byte(`{"name": "Nameless", "location": ["USA"]}`), 0o600))
	_, err = LoadRoute(noID)
	assert.ErrorContains(t, err, "no id")

	array := filepath.Join(dir, "array.json")
	require.NoError(t, os.WriteFile(array, []byte(`[{"id": 1, "location": ["USA"]}]`), 0o600))
	_, err = LoadRoute(array)
	assert.Error(t, err)
}
