package storage

import (
	"context"
	"sync/atomic"

	"github.com/akozadaev/route_scout/internal/models"
)

// stubGateway отдает фиксированные данные и считает обращения.
type stubGateway struct {
	rows      []models.LocationRow
	routes    map[int64]*models.Route
	err       error
	locCalls  atomic.Int32
	pingCalls atomic.Int32
}

func (s *stubGateway) FetchLocations(context.Context) ([]models.LocationRow, error) {
	s.locCalls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubGateway) FetchByFilter(_ context.Context, ids []int64, gradeMin, gradeMax int) ([]*models.Route, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*models.Route{}
	for _, id := range ids {
		if r, ok := s.routes[id]; ok && r.Grade >= gradeMin && r.Grade <= gradeMax {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubGateway) GetRoute(_ context.Context, id int64) (*models.Route, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.routes[id]
	if !ok {
		return nil, ErrRouteNotFound
	}
	return r, nil
}

func (s *stubGateway) Ping(context.Context) error {
	s.pingCalls.Add(1)
	return s.err
}
