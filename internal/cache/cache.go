// Package cache is the read-through listing cache. Folder and document
// listings are always fetched wholesale, so the cache stores whole listings
// as JSON and is invalidated wholesale after any mutation. Cache failures
// are soft: callers fall back to the repository.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"doclib/internal/config"
	"doclib/internal/model"
)

const (
	keyFolders    = "doclib:folders"
	keyDocsPrefix = "doclib:documents:"
	keyDocsAll    = keyDocsPrefix + "all"
)

// NewClient builds a Redis client from config.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Listings caches the wholesale folder and document listings.
type Listings struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListings wraps a Redis client. Entries expire after ttl as a backstop;
// mutations invalidate explicitly and do not rely on expiry.
func NewListings(client *redis.Client, ttl time.Duration) *Listings {
	return &Listings{client: client, ttl: ttl}
}

func docsKey(category string) string {
	if category == "" {
		return keyDocsAll
	}
	return keyDocsPrefix + category
}

// GetFolders returns the cached folder listing, if present.
func (c *Listings) GetFolders(ctx context.Context) ([]model.Folder, bool) {
	raw, err := c.client.Get(ctx, keyFolders).Bytes()
	if err != nil {
		return nil, false
	}
	var folders []model.Folder
	if err := json.Unmarshal(raw, &folders); err != nil {
		return nil, false
	}
	return folders, true
}

// SetFolders stores the folder listing.
func (c *Listings) SetFolders(ctx context.Context, folders []model.Folder) error {
	raw, err := json.Marshal(folders)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyFolders, raw, c.ttl).Err()
}

// GetDocuments returns the cached document listing for a category
// ("" = all categories), if present.
func (c *Listings) GetDocuments(ctx context.Context, category string) ([]model.Document, bool) {
	raw, err := c.client.Get(ctx, docsKey(category)).Bytes()
	if err != nil {
		return nil, false
	}
	var docs []model.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, false
	}
	return docs, true
}

// SetDocuments stores the document listing for a category.
func (c *Listings) SetDocuments(ctx context.Context, category string, docs []model.Document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, docsKey(category), raw, c.ttl).Err()
}

// Invalidate drops every cached listing. Called once after any mutation
// (create/move/delete folder, upload/delete document).
func (c *Listings) Invalidate(ctx context.Context) error {
	keys := []string{
		keyFolders,
		keyDocsAll,
		docsKey(model.CategoryLibrary),
		docsKey(model.CategoryBonus),
	}
	return c.client.Del(ctx, keys...).Err()
}
