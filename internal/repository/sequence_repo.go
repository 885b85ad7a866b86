package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// SequenceRepository allocates order sequence numbers scoped to a two-digit
// year. Allocation goes through a single atomic authority (Redis INCR) so
// two near-simultaneous creates can never receive the same number — the
// count-the-existing-rows approach this replaces raced under concurrency.
type SequenceRepository interface {
	NextOrderSeq(ctx context.Context, yearSuffix string) (int64, error)
}

const orderSeqKeyPrefix = "orders:seq:"

type redisSequenceRepo struct{ rdb *redis.Client }

func NewSequenceRepository(rdb *redis.Client) SequenceRepository {
	return &redisSequenceRepo{rdb: rdb}
}

func (r *redisSequenceRepo) NextOrderSeq(ctx context.Context, yearSuffix string) (int64, error) {
	return r.rdb.Incr(ctx, orderSeqKeyPrefix+yearSuffix).Result()
}
