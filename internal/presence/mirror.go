// Package presence mirrors live room rosters into Redis so operators and other
// tools can inspect who is connected without talking to the chat process.
//
// Keys:
//
//	roster:{room} = hash of connection id -> username
//
// The mirror is write-only from the server's point of view; the in-memory
// directory stays authoritative.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomchat/internal/core"
)

const (
	keyPrefix    = "roster:"
	queueSize    = 256
	scanCount    = 100
	writeTimeout = 2 * time.Second
	resetTimeout = 10 * time.Second
)

type rosterWriter interface {
	WriteRoster(ctx context.Context, room string, members []core.Member) error
	Reset(ctx context.Context) error
}

type update struct {
	room    string
	members []core.Member
}

// Mirror queues roster changes and writes them to Redis from its own goroutine.
type Mirror struct {
	writer  rosterWriter
	updates chan update
	log     *zerolog.Logger
}

// New builds a mirror backed by the Redis server at addr.
func New(addr string, logger *zerolog.Logger) (*Mirror, *RedisRosters) {
	rosters := NewRedisRosters(redis.NewClient(&redis.Options{Addr: addr}))
	return newMirror(rosters, logger), rosters
}

func newMirror(w rosterWriter, logger *zerolog.Logger) *Mirror {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Mirror{
		writer:  w,
		updates: make(chan update, queueSize),
		log:     logger,
	}
}

// RosterChanged implements core.RosterObserver. It never blocks; updates are dropped when the queue is full.
func (m *Mirror) RosterChanged(room string, members []core.Member) {
	select {
	case m.updates <- update{room: room, members: members}:
	default:
		m.log.Warn().Str("room", room).Msg("presence queue full, roster update dropped")
	}
}

// Run clears rosters left by a previous process, then writes queued updates until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	rctx, cancel := context.WithTimeout(ctx, resetTimeout)
	if err := m.writer.Reset(rctx); err != nil {
		m.log.Warn().Err(err).Msg("failed to clear stale rosters")
	}
	cancel()

	for {
		select {
		case u := <-m.updates:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			if err := m.writer.WriteRoster(wctx, u.room, u.members); err != nil {
				m.log.Warn().Err(err).Str("room", u.room).Msg("failed to mirror roster")
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}

// RedisRosters stores rosters as Redis hashes.
type RedisRosters struct {
	rdb *redis.Client
}

// NewRedisRosters wraps an existing client.
func NewRedisRosters(rdb *redis.Client) *RedisRosters {
	return &RedisRosters{rdb: rdb}
}

// WriteRoster replaces the stored roster of room with members.
func (r *RedisRosters) WriteRoster(ctx context.Context, room string, members []core.Member) error {
	key := rosterKey(room)

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.HSet(ctx, key, rosterFields(members)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write roster %s: %w", room, err)
	}
	return nil
}

// Roster reads back the stored roster of room as connection id -> username.
func (r *RedisRosters) Roster(ctx context.Context, room string) (map[string]string, error) {
	out, err := r.rdb.HGetAll(ctx, rosterKey(room)).Result()
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", room, err)
	}
	return out, nil
}

// Reset deletes every stored roster.
func (r *RedisRosters) Reset(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, keyPrefix+"*", scanCount).Result()
		if err != nil {
			return fmt.Errorf("scan rosters: %w", err)
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete rosters: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping checks connectivity.
func (r *RedisRosters) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *RedisRosters) Close() error {
	return r.rdb.Close()
}

func rosterKey(room string) string {
	return keyPrefix + room
}

func rosterFields(members []core.Member) []any {
	fields := make([]any, 0, len(members)*2)
	for _, m := range members {
		fields = append(fields, string(m.ID), m.Username)
	}
	return fields
}
