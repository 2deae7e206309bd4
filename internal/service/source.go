package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"portfoliodash/internal/database"
	"portfoliodash/internal/loader"
	"portfoliodash/internal/models"
)

// Source yields raw holdings. ID identifies the underlying data so parsed
// results can be cached against it.
type Source interface {
	ID() string
	Load(ctx context.Context) ([]models.Holding, error)
}

type fileSource struct {
	path string
}

func FileSource(path string) Source {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return fileSource{path: path}
}

func (s fileSource) ID() string { return "file:" + s.path }

func (s fileSource) Load(_ context.Context) ([]models.Holding, error) {
	return loader.LoadFile(s.path)
}

type uploadSource struct {
	id   string
	data []byte
}

// UploadSource wraps an uploaded CSV blob, identified by its content hash.
func UploadSource(data []byte) Source {
	return uploadSource{id: UploadID(data), data: data}
}

func UploadID(data []byte) string {
	sum := sha256.Sum256(data)
	return "upload:" + hex.EncodeToString(sum[:])
}

func (s uploadSource) ID() string { return s.id }

func (s uploadSource) Load(_ context.Context) ([]models.Holding, error) {
	return loader.Parse(bytes.NewReader(s.data))
}

type databaseSource struct {
	repo *database.Repo
}

func DatabaseSource(r *database.Repo) Source {
	return databaseSource{repo: r}
}

func (s databaseSource) ID() string { return "postgres" }

func (s databaseSource) Load(ctx context.Context) ([]models.Holding, error) {
	return s.repo.GetHoldings(ctx)
}
