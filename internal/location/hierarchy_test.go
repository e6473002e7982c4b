package location

import (
	"strings"
	"testing"

	"github.com/akozadaev/route_scout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	paths := [][]string{
		{"USA"},
		{"USA", "California"},
		{"USA", "California", "Yosemite", "East Face"},
	}

	for _, path := range paths {
		t.Run(strings.Join(path, "/"), func(t *testing.T) {
			expanded := Expand(path)
			require.Len(t, expanded, len(path))
			assert.Equal(t, strings.Join(path, ", "), expanded[len(path)-1])
			for i, prefix := range expanded {
				assert.Equal(t, strings.Join(path[:i+1], ", "), prefix)
			}
		})
	}

	assert.Equal(t,
		[]string{"USA", "USA, California", "USA, California, Yosemite"},
		Expand([]string{"USA", "California", "Yosemite"}),
	)
	assert.Empty(t, Expand(nil))
}

func TestMatchesAny(t *testing.T) {
	expanded := Expand([]string{"USA", "California", "Yosemite"})

	t.Run("empty selection never matches", func(t *testing.T) {
		assert.False(t, MatchesAny(nil, expanded))
		assert.False(t, MatchesAny([]string{}, expanded))
	})

	t.Run("coarse prefix", func(t *testing.T) {
		assert.True(t, MatchesAny([]string{"USA"}, expanded))
	})

	t.Run("full path", func(t *testing.T) {
		assert.True(t, MatchesAny([]string{"Colorado", "USA, California, Yosemite"}, expanded))
	})

	t.Run("bare segment is not a prefix", func(t *testing.T) {
		assert.False(t, MatchesAny([]string{"California"}, expanded))
	})

	t.Run("partial string does not match", func(t *testing.T) {
		assert.False(t, MatchesAny([]string{"USA, Cal"}, expanded))
	})
}

func TestFilter(t *testing.T) {
	rows := []models.LocationRow{
		{ID: 1, Location: []string{"Yosemite", "East Face"}},
		{ID: 2, Location: []string{"USA", "Colorado"}},
		{ID: 3, Location: []string{"Yosemite"}},
	}

	assert.Equal(t, []int64{1, 3}, Filter(rows, []string{"Yosemite"}))
	assert.Equal(t, []int64{2}, Filter(rows, []string{"USA"}))
	assert.Empty(t, Filter(rows, nil))
	assert.Empty(t, Filter(rows, []string{"Nowhere"}))
}

func TestFilter_NestedRegion(t *testing.T) {
	rows := []models.LocationRow{
		{ID: 10, Location: []string{"USA", "California", "Yosemite", "East Face"}},
		{ID: 20, Location: []string{"USA", "Colorado"}},
	}

	assert.Equal(t, []int64{10}, Filter(rows, []string{"USA, California, Yosemite"}))
}

func TestAreas(t *testing.T) {
	rows := []models.LocationRow{
		{ID: 1, Location: []string{"USA", "Colorado"}},
		{ID: 2, Location: []string{"USA", "California", "Bishop"}},
		{ID: 3, Location: []string{"USA", "California"}},
	}

	assert.Equal(t, []string{
		"USA",
		"USA, Colorado",
		"USA, California",
		"USA, California, Bishop",
	}, Areas(rows))
}

func TestTail(t *testing.T) {
	assert.Equal(t, "Yosemite, East Face", Tail([]string{"USA", "California", "Yosemite", "East Face"}, 2))
	assert.Equal(t, "USA", Tail([]string{"USA"}, 2))
	assert.Equal(t, "", Tail(nil, 2))
}
