package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"newsdesk/internal/model"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyRecent    = "articles:recent"
	keyScheduled = "articles:scheduled"
)

// HybridStore combines Redis (metadata, indexes) and Badger (heavy content).
// Article metadata lives in Redis under article:<id>; a recency list keeps
// creation order for listings, and a sorted set scored by publishAt backs
// scheduled-publication recovery. Content bodies go to Badger keyed by id.
type HybridStore struct {
	rdb *redis.Client
	db  *badger.DB
}

// NewHybridStore initializes databases.
// Pass badgerPath="" to run in "Redis-Only" mode (no content bodies).
func NewHybridStore(redisAddr string, badgerPath string) (*HybridStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var db *badger.DB
	var err error

	if badgerPath != "" {
		opts := badger.DefaultOptions(badgerPath)
		opts.Logger = nil // Silence default logger
		db, err = badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger: %w", err)
		}
	}

	return &HybridStore{rdb: rdb, db: db}, nil
}

// Close cleans up connections
func (s *HybridStore) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func articleKey(id uuid.UUID) string {
	return fmt.Sprintf("article:%s", id)
}

// Create persists a new article and adds it to the indexes.
func (s *HybridStore) Create(ctx context.Context, article *model.Article) error {
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now

	data, err := marshalMeta(article)
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, articleKey(article.ID), data, 0)
	pipe.LPush(ctx, keyRecent, article.ID.String())
	addScheduleIndex(ctx, pipe, article)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return s.saveContent(article)
}

// Update overwrites an existing article's record and fixes the indexes.
func (s *HybridStore) Update(ctx context.Context, article *model.Article) error {
	exists, err := s.rdb.Exists(ctx, articleKey(article.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	article.UpdatedAt = time.Now()

	data, err := marshalMeta(article)
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, articleKey(article.ID), data, 0)
	addScheduleIndex(ctx, pipe, article)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return s.saveContent(article)
}

// Get combines data: Metadata from Redis + Content from Badger
func (s *HybridStore) Get(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	val, err := s.rdb.Get(ctx, articleKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var article model.Article
	if err := json.Unmarshal(val, &article); err != nil {
		return nil, err
	}

	// Fetch Content from Badger (if available AND configured)
	if s.db != nil {
		err = s.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(id.String()))
			if err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				article.Content = string(val)
				return nil
			})
		})

		if err != nil && err != badger.ErrKeyNotFound {
			return nil, err
		}
	}

	return &article, nil
}

// List fetches articles newest-first from the recency list.
func (s *HybridStore) List(ctx context.Context, filter ListFilter, limit int) ([]model.Article, error) {
	ids, err := s.rdb.LRange(ctx, keyRecent, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var articles []model.Article
	for _, idStr := range ids {
		if limit > 0 && len(articles) >= limit {
			break
		}
		val, err := s.rdb.Get(ctx, fmt.Sprintf("article:%s", idStr)).Bytes()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, err
		}

		var a model.Article
		if err := json.Unmarshal(val, &a); err != nil {
			continue
		}
		if filter.Published != nil && a.Published != *filter.Published {
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// ListScheduled walks the scheduled sorted set in deadline order.
// Index entries whose record vanished are skipped.
func (s *HybridStore) ListScheduled(ctx context.Context) ([]model.Article, error) {
	ids, err := s.rdb.ZRange(ctx, keyScheduled, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var articles []model.Article
	for _, idStr := range ids {
		val, err := s.rdb.Get(ctx, fmt.Sprintf("article:%s", idStr)).Bytes()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, err
		}

		var a model.Article
		if err := json.Unmarshal(val, &a); err != nil {
			continue
		}
		if a.State() != model.StateScheduled {
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// Delete removes the record, its indexes, and any stored content.
func (s *HybridStore) Delete(ctx context.Context, id uuid.UUID) error {
	removed, err := s.rdb.Del(ctx, articleKey(id)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}

	pipe := s.rdb.Pipeline()
	pipe.LRem(ctx, keyRecent, 0, id.String())
	pipe.ZRem(ctx, keyScheduled, id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if s.db != nil {
		return s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(id.String()))
		})
	}
	return nil
}

// marshalMeta strips the heavy content before the record goes to Redis.
func marshalMeta(article *model.Article) ([]byte, error) {
	meta := *article
	meta.Content = ""
	return json.Marshal(meta)
}

// addScheduleIndex keeps the scheduled sorted set in step with the record:
// pending articles are scored by their deadline, everything else is dropped.
func addScheduleIndex(ctx context.Context, pipe redis.Pipeliner, article *model.Article) {
	if article.State() == model.StateScheduled {
		pipe.ZAdd(ctx, keyScheduled, redis.Z{
			Score:  float64(article.PublishAt.UnixMilli()),
			Member: article.ID.String(),
		})
	} else {
		pipe.ZRem(ctx, keyScheduled, article.ID.String())
	}
}

// saveContent writes the body to Badger when there is one.
func (s *HybridStore) saveContent(article *model.Article) error {
	if article.Content == "" {
		return nil
	}
	if s.db == nil {
		// Redis-only mode cannot hold bodies.
		return fmt.Errorf("cannot save content: badgerdb is not initialized")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(article.ID.String()), []byte(article.Content))
	})
}
