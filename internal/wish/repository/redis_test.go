package repository

import (
	"context"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/trian/landing/backend/wishes-service/internal/wish"
)

func TestRedisRepo_LoadSave(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepo(client, "")
	ctx := context.Background()

	// first load initializes the key with an empty array
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
	raw, err := m.Get("wishes:document")
	require.NoError(t, err)
	require.Equal(t, "[]", raw)

	in := []wish.Wish{{ID: 7, Title: wish.DefaultTitle, Author: "Ann", Content: "Thanks!", Date: "1/2/2026"}}
	require.NoError(t, repo.Save(ctx, in))

	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, in, got)
	require.Zero(t, m.TTL("wishes:document"))
}

func TestRedisRepo_CorruptValue(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.Set("custom", "oops"))

	repo := NewRedisRepo(redis.NewClient(&redis.Options{Addr: m.Addr()}), "custom")
	_, err = repo.Load(context.Background())
	require.Error(t, err)
}

func TestRedisRepo_Unavailable(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	m.Close()

	repo := NewRedisRepo(client, "")
	_, err = repo.Load(context.Background())
	require.Error(t, err)
	require.Error(t, repo.Save(context.Background(), nil))
}

// beforeCmd runs fn ahead of every command the client sends.
type beforeCmd struct {
	fn func(cmd redis.Cmder)
}

func (h beforeCmd) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h beforeCmd) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.fn(cmd)
		return next(ctx, cmd)
	}
}

func (h beforeCmd) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisRepo_LoadAfterLosingInitRace(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	other := `[{"id":4,"title":"Lời Tri Ân","author":"Lan","content":"Cảm ơn","date":"2/3/2026"}]`
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	client.AddHook(beforeCmd{fn: func(cmd redis.Cmder) {
		// another process creates the document between our GET and SETNX
		if cmd.Name() == "setnx" {
			require.NoError(t, m.Set("wishes:document", other))
		}
	}})

	repo := NewRedisRepo(client, "")
	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []wish.Wish{{ID: 4, Title: wish.DefaultTitle, Author: "Lan", Content: "Cảm ơn", Date: "2/3/2026"}}, got)

	raw, err := m.Get("wishes:document")
	require.NoError(t, err)
	require.Equal(t, other, raw)
}
