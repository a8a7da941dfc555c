package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/recodex/internal/db"
)

// maxPipeline bounds the commands sent in one DoMulti round-trip during ingest.
const maxPipeline = 256

const rootPath = "$"

func jsonSet(b rueidis.Builder, key, path string, data []byte) rueidis.Completed {
	if path == "" {
		path = rootPath
	}
	return b.JsonSet().Key(key).Path(path).Value(string(data)).Build()
}

// JSONSet writes a product document.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if err := s.do(ctx, jsonSet(s.b(), key, path, data)).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	return nil
}

// JSONSetMulti pipelines documents in chunks of maxPipeline. Every chunk is
// sent even if an earlier one failed; the returned error names all failed keys.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	var failed []error
	for start := 0; start < len(items); start += maxPipeline {
		chunk := items[start:min(start+maxPipeline, len(items))]
		cmds := make([]rueidis.Completed, len(chunk))
		for i, item := range chunk {
			cmds[i] = jsonSet(s.b(), item.Key, item.Path, item.Data)
		}
		for i, res := range s.client.DoMulti(ctx, cmds...) {
			if err := res.Error(); err != nil {
				failed = append(failed, fmt.Errorf("key %s: %w", chunk[i].Key, err))
			}
		}
	}
	if len(failed) > 0 {
		return &db.Error{Op: db.OpJSONSet, Err: errors.Join(failed...)}
	}
	return nil
}

// JSONGet reads a document, or the given paths of it.
// A missing key yields db.ErrKeyNotFound.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	cmd := s.b().JsonGet().Key(key).Path(paths...).Build()
	raw, err := s.do(ctx, cmd).ToString()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpJSONGet, Err: fmt.Errorf("key %s: %w", key, err)}
	case raw == "" || raw == "[]":
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.do(ctx, s.b().Del().Key(key).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.do(ctx, s.b().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	return n > 0, nil
}
