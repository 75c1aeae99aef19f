package tasks

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phPortfolio/internal/portfolio"
)

func TestPublishNotification(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := client.Subscribe(ctx, NotifyChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := Notification{
		Type:   NotifyImage,
		Status: "applied",
		Target: &portfolio.ImageTarget{Field: portfolio.ImageProjectImage, ProjectID: "p1"},
	}
	require.NoError(t, Publish(ctx, client, n))

	select {
	case msg := <-sub.Channel():
		var got Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, n, got)
	case <-time.After(2 * time.Second):
		t.Fatal("notification not received")
	}
}
