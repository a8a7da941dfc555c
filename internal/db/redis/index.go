package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/recodex/internal/db"
)

// CreateIndex issues FT.CREATE for def.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}
	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	}
	return &db.Error{Op: db.OpCreateIndex, Err: err}
}

// DropIndex removes an index; deleteDocs also removes the indexed documents.
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	cmd := s.b().FtDropindex().Index(name).Build()
	if deleteDocs {
		cmd = s.b().FtDropindex().Index(name).Dd().Build()
	}
	err := s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return nil
	case isMissingIndex(err):
		return db.ErrIndexNotFound
	}
	return &db.Error{Op: db.OpDropIndex, Err: err}
}

// IndexExists probes FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().FtInfo().Index(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isMissingIndex(err):
		return false, nil
	}
	return false, &db.Error{Op: db.OpIndexInfo, Err: err}
}

func isMissingIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index")
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	switch {
	case idx.Name == "":
		return nil, errors.New("index name is required")
	case len(idx.Fields) == 0:
		return nil, errors.New("at least one field is required")
	}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args := []string{idx.Name, "ON", string(storage)}
	if n := len(idx.Prefixes); n > 0 {
		args = append(append(args, "PREFIX", strconv.Itoa(n)), idx.Prefixes...)
	}
	if idx.Language != "" {
		args = append(args, "LANGUAGE", idx.Language)
	}

	args = append(args, "SCHEMA")
	for i := range idx.Fields {
		f, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, f...)
	}
	return args, nil
}

var fieldKeywords = map[db.IndexFieldType]string{
	db.IndexFieldNumeric: "NUMERIC",
	db.IndexFieldText:    "TEXT",
	db.IndexFieldTag:     "TAG",
}

// buildFieldArgs renders one SCHEMA entry: name [AS alias] TYPE [options] [SORTABLE].
func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}
	kw, ok := fieldKeywords[f.Type]
	if !ok {
		return nil, fmt.Errorf("field %s: unknown field type %d", f.Name, f.Type)
	}

	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}
	args = append(args, kw)

	if f.Type == db.IndexFieldText {
		if f.TextWeight > 0 {
			args = append(args, "WEIGHT", formatNumber(f.TextWeight))
		}
		if f.NoStem {
			args = append(args, "NOSTEM")
		}
	}
	if f.Type == db.IndexFieldTag {
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
	}
	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	return args, nil
}
