// Copyright (c) 2026 Reelgate. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reelgate/reelgate/internal/platform/apperr"
	"github.com/reelgate/reelgate/internal/platform/constants"
)

// Source is the lesson lookup contract the video gate and the catalog API
// consume. [Client] implements it against the CMS; [Cache] decorates it.
type Source interface {
	LessonBySlugOrID(ctx context.Context, id string) (*Lesson, error)
	Courses(ctx context.Context) ([]Course, error)
}

// Cache is a read-through Redis decorator over a [Source].
//
// # Consistency
//
// Entries live for a bounded TTL and are additionally evicted when the CMS
// fires a publish webhook. Evicting the cache does NOT revoke outstanding
// grant tokens — a viewer holding a live grant for an unpublished lesson
// keeps access until the grant expires. That exposure window is the accepted
// contract of the stateless token design.
//
// # Failure Mode
//
// Redis trouble degrades to direct CMS lookups; a cache outage must never
// take playback down with it.
type Cache struct {
	source Source
	rdb    *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewCache wraps source with a Redis-backed read-through cache.
func NewCache(source Source, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Cache {
	return &Cache{
		source: source,
		rdb:    rdb,
		ttl:    ttl,
		log:    log,
	}
}

// LessonBySlugOrID implements [Source] with caching.
//
// Not-found results are not cached: a missing lesson is usually an editor
// mid-publish, and the next request should see it as soon as the CMS does.
func (cache *Cache) LessonBySlugOrID(ctx context.Context, id string) (*Lesson, error) {
	key := constants.RedisPrefixLesson + id

	cached, err := cache.rdb.Get(ctx, key).Bytes()
	if err == nil {
		lesson := &Lesson{}
		if err := json.Unmarshal(cached, lesson); err == nil {
			return lesson, nil
		}
		// Corrupt entry: drop it and fall through to the source.
		cache.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		cache.log.Warn("catalog_cache_read_failed", slog.String("key", key), slog.Any("error", err))
	}

	lesson, err := cache.source.LessonBySlugOrID(ctx, id)
	if err != nil {
		return nil, err
	}

	cache.store(ctx, lessonCacheKey(id, lesson), lesson)
	return lesson, nil
}

// lessonCacheKey keys a fetched lesson under its canonical slug, whatever
// identifier the caller used. Publish webhooks evict by slug only, so an
// entry keyed by CMS entry ID would outlive its eviction.
func lessonCacheKey(requested string, lesson *Lesson) string {
	if lesson != nil && lesson.Slug != "" {
		return constants.RedisPrefixLesson + lesson.Slug
	}
	return constants.RedisPrefixLesson + requested
}

// Courses implements [Source] with caching.
func (cache *Cache) Courses(ctx context.Context) ([]Course, error) {
	cached, err := cache.rdb.Get(ctx, constants.RedisPrefixCourses).Bytes()
	if err == nil {
		var courses []Course
		if err := json.Unmarshal(cached, &courses); err == nil {
			return courses, nil
		}
		cache.rdb.Del(ctx, constants.RedisPrefixCourses)
	} else if !errors.Is(err, redis.Nil) {
		cache.log.Warn("catalog_cache_read_failed",
			slog.String("key", constants.RedisPrefixCourses), slog.Any("error", err))
	}

	courses, err := cache.source.Courses(ctx)
	if err != nil {
		return nil, err
	}

	cache.store(ctx, constants.RedisPrefixCourses, courses)
	return courses, nil
}

// InvalidateLesson evicts a single lesson entry.
func (cache *Cache) InvalidateLesson(ctx context.Context, slug string) error {
	if err := cache.rdb.Del(ctx, constants.RedisPrefixLesson+slug).Err(); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// InvalidateCourses evicts the course listing.
func (cache *Cache) InvalidateCourses(ctx context.Context) error {
	if err := cache.rdb.Del(ctx, constants.RedisPrefixCourses).Err(); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// InvalidateAll evicts every catalog entry.
//
// Used for publish events whose scope cannot be narrowed (unknown content
// types, bulk imports). SCAN keeps this safe on a shared Redis — no KEYS.
func (cache *Cache) InvalidateAll(ctx context.Context) error {
	iter := cache.rdb.Scan(ctx, 0, constants.RedisPrefixCatalog+"*", 100).Iterator()

	for iter.Next(ctx) {
		if err := cache.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return apperr.Internal(err)
		}
	}

	if err := iter.Err(); err != nil {
		return apperr.Internal(err)
	}

	return nil
}

// store writes a cache entry, logging rather than failing on errors.
func (cache *Cache) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		cache.log.Warn("catalog_cache_marshal_failed", slog.String("key", key), slog.Any("error", err))
		return
	}

	if err := cache.rdb.Set(ctx, key, payload, cache.ttl).Err(); err != nil {
		cache.log.Warn("catalog_cache_write_failed", slog.String("key", key), slog.Any("error", err))
	}
}
