package worker

// Render and email jobs that exhaust their retries land on a per-queue dead
// letter list ("dlq:jobs:render", "dlq:jobs:email"). Entries carry the order
// code and document ID so an operator can trace a stuck quote or delivery
// note back to its order with redis-cli, without decoding the raw payload.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dlqPrefix = "dlq:"

// DeadLetter is the envelope stored on a dead letter list.
type DeadLetter struct {
	Queue    string            `json:"queue"`
	JobType  string            `json:"job_type"`
	Payload  json.RawMessage   `json:"payload"`
	Reason   string            `json:"reason"`
	Attempts int               `json:"attempts"`
	FailedAt time.Time         `json:"failed_at"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// newDeadLetter stamps the failure time and binds the job to the order it
// was produced for. Meta keys are free-form: document jobs record
// order_code and document_id, email jobs the recipient and attachment.
func newDeadLetter(queue, jobType string, payload json.RawMessage, reason string, attempts int, meta map[string]string) DeadLetter {
	return DeadLetter{
		Queue:    queue,
		JobType:  jobType,
		Payload:  payload,
		Reason:   reason,
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
		Meta:     meta,
	}
}

// SendToDLQ pushes an exhausted job onto its dead letter list. Errors are
// logged rather than returned: by the time a job is dead there is no caller
// left that could act on the failure.
func SendToDLQ(ctx context.Context, rdb *redis.Client, entry DeadLetter) {
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", entry.Queue).Msg("dlq: marshal entry")
		return
	}

	key := dlqPrefix + entry.Queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push entry")
		return
	}

	evt := log.Warn().
		Str("queue", entry.Queue).
		Str("job_type", entry.JobType).
		Str("reason", entry.Reason).
		Int("attempts", entry.Attempts)
	for k, v := range entry.Meta {
		evt = evt.Str(k, v)
	}
	evt.Msg("dlq: job moved to dead letter queue")
}

// DLQLength reports the depth of a queue's dead letter list.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqPrefix+queue).Result()
}
