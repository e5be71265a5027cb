// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the journal pushes to and the historian
// drains from.
const DefaultQueueName = "yahtzee_actions"

// ActionRecord is one accepted player action, queued for the historian. The
// payload is whatever the dispatcher considers worth keeping: committed
// scores, final rankings, and so on.
type ActionRecord struct {
	RoomCode   string                 `json:"room_code"`
	SessionID  uuid.UUID              `json:"session_id"`
	ActionType string                 `json:"action_type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Timestamp  int64                  `json:"timestamp"`
}

// Journal publishes accepted actions to a Redis queue. It is strictly
// best-effort: a publish failure is the caller's to log and ignore, never a
// reason to reject the action itself.
type Journal struct {
	client *redis.Client
	queue  string
}

// NewJournal connects to Redis at addr and verifies the connection. queue
// may be empty to use DefaultQueueName.
func NewJournal(addr, queue string, db int) (*Journal, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Journal{client: client, queue: queue}, nil
}

// Publish serializes record and pushes it onto the queue.
func (j *Journal) Publish(ctx context.Context, record ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := j.client.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", j.queue, err)
	}
	return nil
}

// Pop blocks up to timeout waiting for the next record. Returns redis.Nil
// when the queue stays empty; used by the historian's drain loop.
func (j *Journal) Pop(ctx context.Context, timeout time.Duration) (*ActionRecord, error) {
	res, err := j.client.BLPop(ctx, timeout, j.queue).Result()
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, redis.Nil
	}
	var record ActionRecord
	if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
		return nil, fmt.Errorf("invalid action record: %w", err)
	}
	return &record, nil
}

// Close releases the underlying client.
func (j *Journal) Close() error {
	return j.client.Close()
}
