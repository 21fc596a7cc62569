package counter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	KeyFileStats = "causelist:fs" // HASH. file_id -> re-download counter. HINCRBY causelist:fs {file_id} 1
)

type redisRepository struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewRedisRepository(cl *redis.Client, log *slog.Logger) *redisRepository {
	return &redisRepository{
		cl:  cl,
		log: log.With(slog.String("item", "CounterRepository")),
	}
}

func (r *redisRepository) IncFileCounter(ctx context.Context, id string) (int64, error) {
	counter, err := r.cl.HIncrBy(ctx, KeyFileStats, id, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("cannot increment file %s counter: %w", id, err)
	}

	return counter, nil
}

func (r *redisRepository) GetCounters(ctx context.Context) (map[string]int64, error) {
	values, err := r.cl.HGetAll(ctx, KeyFileStats).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get file counters: %w", err)
	}

	counters := make(map[string]int64, len(values))
	for id, val := range values {
		c, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			r.log.Error("Cannot convert counter value", slog.String("file_id", id), slog.Any("error", err))

			continue
		}

		counters[id] = c
	}

	return counters, nil
}
