package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// localStorage keeps artifacts as plain files in one directory.
// Writes go through a temp file and a rename so readers never see partial content.
type localStorage struct {
	dir string
}

// NewLocal creates a filesystem-backed store rooted at dir.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		return nil, errors.New("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &localStorage{dir: dir}, nil
}

func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := ValidateKey(key); err != nil {
		return ObjectInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	tmp, err := os.CreateTemp(l.dir, ".put-*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return ObjectInfo{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, key)); err != nil {
		_ = os.Remove(tmp.Name())
		return ObjectInfo{}, fmt.Errorf("commit %s: %w", key, err)
	}

	ct := opt.ContentType
	if ct == "" {
		ct = contentType(key)
	}
	st, err := os.Stat(filepath.Join(l.dir, key))
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat %s: %w", key, err)
	}
	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  ct,
		LastModified: st.ModTime(),
		Metadata:     opt.Metadata,
	}, nil
}

func (l *localStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	info, err := l.Stat(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(filepath.Join(l.dir, key))
	if err != nil {
		return nil, ObjectInfo{}, mapFSError(key, err)
	}
	return f, info, nil
}

func (l *localStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	if err := ValidateKey(key); err != nil {
		return ObjectInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	st, err := os.Stat(filepath.Join(l.dir, key))
	if err != nil {
		return ObjectInfo{}, mapFSError(key, err)
	}
	if !st.Mode().IsRegular() {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  contentType(key),
		LastModified: st.ModTime(),
	}, nil
}

func (l *localStorage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.dir, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func mapFSError(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return fmt.Errorf("open %s: %w", key, err)
}

func contentType(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	if ext == ".txt" {
		return "text/plain; charset=utf-8"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
