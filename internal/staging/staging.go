// Package staging manages the inbound area where uploads wait for a transformation.
//
// Every request works inside its own workspace directory so that two requests
// uploading files with the same name never see each other's bytes.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pdfapi/internal/apperror"
	"pdfapi/internal/model"
)

// Stager creates per-request workspaces under a root directory.
type Stager struct {
	root string
}

// New returns a Stager rooted at dir, creating it if needed.
func New(dir string) (*Stager, error) {
	if dir == "" {
		return nil, errors.New("staging directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{root: dir}, nil
}

// Root returns the staging root directory.
func (s *Stager) Root() string {
	return s.root
}

// Begin opens a new workspace. Callers must Close it.
func (s *Stager) Begin() (*Workspace, error) {
	dir := filepath.Join(s.root, uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir, names: make(map[string]int)}, nil
}

// Workspace is a request-scoped directory holding staged inputs and scratch outputs.
// It is safe for concurrent use.
type Workspace struct {
	dir string

	mu       sync.Mutex
	names    map[string]int
	consumed map[string]bool
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Stage writes part under its sanitised name.
func (w *Workspace) Stage(part model.FilePart) (*model.UploadedFile, error) {
	if part.Content == nil {
		return nil, errors.New("stage: content is nil")
	}
	name := w.reserve(Sanitize(part.Filename))
	path := filepath.Join(w.dir, "in", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("stage %s: %w", name, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", name, err)
	}
	n, err := io.Copy(f, part.Content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("stage %s: %w", name, err)
	}

	return &model.UploadedFile{
		OriginalName:  part.Filename,
		SanitizedName: name,
		Size:          n,
		Path:          path,
	}, nil
}

// Verify fails with FileNotFound when the staged file is gone or already consumed.
func (w *Workspace) Verify(file *model.UploadedFile) error {
	w.mu.Lock()
	consumed := w.consumed[file.Path]
	w.mu.Unlock()
	if consumed {
		return apperror.New(apperror.KindFileNotFound, "staged file already consumed")
	}
	if _, err := os.Stat(file.Path); err != nil {
		return apperror.Wrap(apperror.KindFileNotFound, "staged file not found", err)
	}
	return nil
}

// Consume deletes a staged input. Calling it twice is a no-op.
func (w *Workspace) Consume(file *model.UploadedFile) error {
	w.mu.Lock()
	if w.consumed == nil {
		w.consumed = make(map[string]bool)
	}
	if w.consumed[file.Path] {
		w.mu.Unlock()
		return nil
	}
	w.consumed[file.Path] = true
	w.mu.Unlock()

	if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("consume %s: %w", file.SanitizedName, err)
	}
	return nil
}

// Scratch returns a fresh path inside the workspace for transformation output.
func (w *Workspace) Scratch(name string) string {
	return filepath.Join(w.dir, "out", w.reserve(Sanitize(name)))
}

// PrepareScratch creates the scratch directory.
func (w *Workspace) PrepareScratch() error {
	return os.MkdirAll(filepath.Join(w.dir, "out"), 0o700)
}

// Close removes the workspace and everything left in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}

// reserve returns name, or name with a numeric suffix when it was already handed out.
func (w *Workspace) reserve(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := w.names[name]
	w.names[name] = n + 1
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(n) + ext
}
