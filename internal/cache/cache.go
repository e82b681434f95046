// Package cache holds the optional Redis integration. Rooms publish
// their action history here for external consumers (replay, spectator
// tooling); the server runs fine without a Redis backend.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. Nil when Redis is not configured; all
// publish helpers degrade to no-ops in that case.
var Rdb *redis.Client

// InitRedis connects the shared client and verifies the connection.
func InitRedis(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// RoomActionRecord is one entry of a room's action history.
type RoomActionRecord struct {
	Index     int      `json:"index"`
	Action    string   `json:"action"`
	Actor     string   `json:"actor"`
	Cards     []string `json:"cards,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

func roomActionsKey(roomID string) string {
	return "room:actions:" + roomID
}

// PublishRoomAction appends a record to the room's action list.
// No-op when Redis is not configured.
func PublishRoomAction(ctx context.Context, roomID string, rec RoomActionRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := Rdb.RPush(ctx, roomActionsKey(roomID), data).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", roomActionsKey(roomID), err)
	}
	return nil
}

// RoomActions reads back a room's full action history.
func RoomActions(ctx context.Context, roomID string) ([]RoomActionRecord, error) {
	if Rdb == nil {
		return nil, nil
	}
	raw, err := Rdb.LRange(ctx, roomActionsKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", roomActionsKey(roomID), err)
	}
	out := make([]RoomActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec RoomActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal action record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
