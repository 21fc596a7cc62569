package counter

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	serviceName = "counter"
)

type CounterRepository interface {
	IncFileCounter(ctx context.Context, id string) (int64, error)
	GetCounters(ctx context.Context) (map[string]int64, error)
}

type counterService struct {
	repo CounterRepository
	log  *slog.Logger
}

func NewCounterService(repo CounterRepository, log *slog.Logger) *counterService {
	return &counterService{
		repo: repo,
		log:  log.With(slog.String("service", serviceName)),
	}
}

func (c *counterService) GetDownloadCounters(ctx context.Context) (map[string]int64, error) {
	counters, err := c.repo.GetCounters(ctx)
	if err != nil {
		c.log.Error("Cannot get download counters", slog.Any("error", err))

		return nil, fmt.Errorf("cannot get download counters: %w", err)
	}

	return counters, nil
}

func (c *counterService) IncFileCounter(ctx context.Context, id string) (int64, error) {
	counter, err := c.repo.IncFileCounter(ctx, id)
	if err != nil {
		c.log.Error("Cannot increment download counter", slog.String("file_id", id), slog.Any("error", err))

		return 0, fmt.Errorf("cannot increment file %s counter: %w", id, err)
	}

	return counter, nil
}
