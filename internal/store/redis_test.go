package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
)

// Runs against a real server when INVOICEDESK_TEST_REDIS is set, e.g. redis://localhost:6379/15
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	url := os.Getenv("INVOICEDESK_TEST_REDIS")
	if url == "" {
		t.Skip("INVOICEDESK_TEST_REDIS not set")
	}

	client, err := ConnectRedis(context.Background(), url)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	prefix := "invoicedesk-test:" + uuid.NewString() + ":"
	s := NewRedisStore(client, prefix)
	t.Cleanup(func() {
		ctx := context.Background()
		if keys, err := client.Keys(ctx, prefix+"*").Result(); err == nil && len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		s.Close()
	})
	return s
}

func TestRedisStore_SetManyAndRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t)

	if _, ok, err := s.Get(ctx, KeyTemplates); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	err := s.SetMany(ctx, map[string]json.RawMessage{
		KeyTemplates:        json.RawMessage(`[{"id":"classic"}]`),
		KeyActiveTemplateID: json.RawMessage(`"classic"`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := s.Get(ctx, KeyActiveTemplateID)
	if err != nil || !ok || string(got) != `"classic"` {
		t.Fatalf("expected active id, got %s ok=%v err=%v", got, ok, err)
	}

	// keys live under the prefix only
	if n, _ := s.client.Exists(ctx, KeyActiveTemplateID).Result(); n != 0 {
		t.Error("expected no unprefixed key")
	}

	if err := s.Remove(ctx, KeyActiveTemplateID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyActiveTemplateID); ok {
		t.Error("expected key removed")
	}
}
