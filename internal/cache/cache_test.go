package cache

import (
	"context"
	"testing"
	"time"

	"doclib/internal/config"
	"doclib/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListings(t *testing.T) *Listings {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewListings(client, time.Minute)
}

func TestNewClient(t *testing.T) {
	cfg := config.RedisConfig{Host: "redis", Port: "6380", Password: "secret", DB: 1}
	client := NewClient(cfg)

	assert.Equal(t, "redis:6380", client.Options().Addr)
	assert.Equal(t, "secret", client.Options().Password)
	assert.Equal(t, 1, client.Options().DB)
}

func TestListings_FoldersRoundtrip(t *testing.T) {
	c := newTestListings(t)
	ctx := context.Background()

	_, ok := c.GetFolders(ctx)
	assert.False(t, ok, "empty cache must miss")

	parent := "root-id"
	folders := []model.Folder{
		{ID: "root-id", Name: "Root"},
		{ID: "child-id", Name: "Child", ParentID: &parent},
	}
	require.NoError(t, c.SetFolders(ctx, folders))

	got, ok := c.GetFolders(ctx)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].ParentID)
	assert.Equal(t, "root-id", *got[1].ParentID)
}

func TestListings_DocumentsPerCategory(t *testing.T) {
	c := newTestListings(t)
	ctx := context.Background()

	library := []model.Document{{ID: "a", Filename: "a.pdf", Category: model.CategoryLibrary}}
	bonus := []model.Document{{ID: "b", Filename: "b.pdf", Category: model.CategoryBonus}}

	require.NoError(t, c.SetDocuments(ctx, model.CategoryLibrary, library))
	require.NoError(t, c.SetDocuments(ctx, model.CategoryBonus, bonus))

	got, ok := c.GetDocuments(ctx, model.CategoryLibrary)
	require.True(t, ok)
	assert.Equal(t, "a", got[0].ID)

	got, ok = c.GetDocuments(ctx, model.CategoryBonus)
	require.True(t, ok)
	assert.Equal(t, "b", got[0].ID)

	_, ok = c.GetDocuments(ctx, "")
	assert.False(t, ok, "all-categories listing cached separately")
}

func TestListings_Invalidate(t *testing.T) {
	c := newTestListings(t)
	ctx := context.Background()

	require.NoError(t, c.SetFolders(ctx, []model.Folder{{ID: "f"}}))
	require.NoError(t, c.SetDocuments(ctx, "", []model.Document{{ID: "d"}}))
	require.NoError(t, c.SetDocuments(ctx, model.CategoryLibrary, []model.Document{{ID: "d"}}))

	require.NoError(t, c.Invalidate(ctx))

	_, ok := c.GetFolders(ctx)
	assert.False(t, ok)
	_, ok = c.GetDocuments(ctx, "")
	assert.False(t, ok)
	_, ok = c.GetDocuments(ctx, model.CategoryLibrary)
	assert.False(t, ok)
}
