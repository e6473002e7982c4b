package storage

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/akozadaev/route_scout/internal/logging"
	"github.com/akozadaev/route_scout/internal/metrics"
	"github.com/akozadaev/route_scout/internal/models"
)

// BreakerConfig - параметры автоматического выключателя.
type BreakerConfig struct {
	Name     string
	Failures uint32        // Подряд идущих ошибок до размыкания
	Timeout  time.Duration // Время в разомкнутом состоянии до пробного запроса
}

// BreakerGateway защищает хранилище автоматическим выключателем: после серии
// ошибок запросы отклоняются сразу, не дожидаясь таймаутов базы.
type BreakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerGateway оборачивает gateway выключателем.
func NewBreakerGateway(next Gateway, cfg BreakerConfig) *BreakerGateway {
	if cfg.Name == "" {
		cfg.Name = "store"
	}
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	metrics.BreakerState.Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRouteNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Store circuit breaker state changed")
			metrics.BreakerState.Set(stateValue(to))
		},
	})

	return &BreakerGateway{next: next, cb: cb}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// State возвращает текущее состояние выключателя.
func (b *BreakerGateway) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerGateway) FetchLocations(ctx context.Context) ([]models.LocationRow, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.FetchLocations(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.([]models.LocationRow), nil
}

func (b *BreakerGateway) FetchByFilter(ctx context.Context, ids []int64, gradeMin, gradeMax int) ([]*models.Route, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.FetchByFilter(ctx, ids, gradeMin, gradeMax)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*models.Route), nil
}

func (b *BreakerGateway) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.GetRoute(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.Route), nil
}

// Ping не проходит через выключатель: проверка готовности должна видеть
// реальное состояние хранилища.
func (b *BreakerGateway) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

var _ Gateway = (*BreakerGateway)(nil)
