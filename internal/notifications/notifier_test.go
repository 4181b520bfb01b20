package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, EventNotificationCreated, nil))
	assert.NoError(t, n.PublishBroadcast(context.Background(), "x"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestParseUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		channel string
		want    uint
		ok      bool
	}{
		{"notifications:user:1", 1, true},
		{"notifications:user:100", 100, true},
		{"notifications:user:0", 0, false},
		{"notifications:user:", 0, false},
		{"notifications:user:-3", 0, false},
		{"chat:conv:5", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseUserChannel(tt.channel)
		assert.Equal(t, tt.ok, ok, tt.channel)
		assert.Equal(t, tt.want, got, tt.channel)
	}
}

func TestHub_ReceivesPublishedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier(rdb)
	hub := NewHub()
	require.NoError(t, hub.StartWiring(ctx, n))

	client, err := hub.Register(42, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishUser(ctx, 42, EventNotificationsRead, map[string]int{"unread_count": 0}))

	select {
	case raw := <-client.Send:
		var ev struct {
			Type    string         `json:"type"`
			Payload map[string]int `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, EventNotificationsRead, ev.Type)
		assert.Equal(t, 0, ev.Payload["unread_count"])
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	// Nothing for other users.
	require.NoError(t, n.PublishUser(ctx, 43, EventNotificationCreated, nil))
	assert.Never(t, func() bool { return len(client.Send) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
