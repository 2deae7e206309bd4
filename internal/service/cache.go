package service

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"portfoliodash/internal/i18n"
	"portfoliodash/internal/models"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	ckHoldings = "holdings:"
	ckBlob     = "blob:"
	ckI18n     = "i18n:"

	CacheCleanupInterval = 10 * time.Minute
)

// SourceCache memoizes parsed holdings and localization stores by source
// identity. File and mapping sources are static and never expire; uploads
// live for the upload TTL. Database holdings are not cached.
type SourceCache struct {
	c         *cache.Cache
	uploadTTL time.Duration
	log       *logrus.Logger
}

func NewSourceCache(uploadTTL time.Duration, log *logrus.Logger) *SourceCache {
	return &SourceCache{
		c:         cache.New(cache.NoExpiration, CacheCleanupInterval),
		uploadTTL: uploadTTL,
		log:       log,
	}
}

// ttl reports how long holdings for id may be reused. Only file and upload
// sources are immutable for a given id; anything else, such as the database,
// can change underneath and is loaded on every request.
func (s *SourceCache) ttl(id string) (time.Duration, bool) {
	switch {
	case strings.HasPrefix(id, "upload:"):
		return s.uploadTTL, true
	case strings.HasPrefix(id, "file:"):
		return cache.NoExpiration, true
	}
	return 0, false
}

// Localization returns the store for the mapping directory dir, loading it on
// first use.
func (s *SourceCache) Localization(dir string) *i18n.Store {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	key := ckI18n + dir
	if v, ok := s.c.Get(key); ok {
		return v.(*i18n.Store)
	}
	store := i18n.LoadStore(dir, s.log)
	s.c.Set(key, store, cache.NoExpiration)
	s.log.Debugf("loaded localization store from %s", dir)
	return store
}

// Holdings loads src, or returns the rows cached for its identity. Failed
// loads are not cached.
func (s *SourceCache) Holdings(ctx context.Context, src Source) ([]models.Holding, error) {
	ttl, cacheable := s.ttl(src.ID())
	if !cacheable {
		return src.Load(ctx)
	}
	key := ckHoldings + src.ID()
	if v, ok := s.c.Get(key); ok {
		s.log.Debugf("cache hit for %s", src.ID())
		return v.([]models.Holding), nil
	}
	rows, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.c.Set(key, rows, ttl)
	s.log.Debugf("cached %d holdings for %s", len(rows), src.ID())
	return rows, nil
}

// PutUpload keeps an uploaded blob for later requests and returns its id.
func (s *SourceCache) PutUpload(data []byte) string {
	id := UploadID(data)
	s.c.Set(ckBlob+id, data, s.uploadTTL)
	return id
}

// Upload returns the source for a previously stored upload id.
func (s *SourceCache) Upload(id string) (Source, bool) {
	v, ok := s.c.Get(ckBlob + id)
	if !ok {
		return nil, false
	}
	return uploadSource{id: id, data: v.([]byte)}, true
}
