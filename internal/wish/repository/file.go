package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/trian/landing/backend/wishes-service/internal/wish"
	"github.com/trian/landing/backend/wishes-service/pkg/logger"
)

// FileRepo stores the wishes as a pretty-printed JSON array in a single file.
type FileRepo struct {
	path string
}

// NewFileRepo returns a repo for path and creates the file with an empty
// array when it does not exist yet.
func NewFileRepo(path string) (*FileRepo, error) {
	r := &FileRepo{path: path}
	created, err := r.ensure()
	if err != nil {
		return nil, err
	}
	if created {
		logger.Infof("created empty wishes document at %s", path)
	}
	return r, nil
}

func (r *FileRepo) Name() string { return "file" }

// Path is the location of the backing document.
func (r *FileRepo) Path() string { return r.path }

// ensure writes "[]" when the document is missing and reports whether it did.
func (r *FileRepo) ensure() (bool, error) {
	_, err := os.Stat(r.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", r.path, err)
	}
	if err := r.write([]wish.Wish{}); err != nil {
		return false, err
	}
	return true, nil
}

func (r *FileRepo) Load(ctx context.Context) ([]wish.Wish, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := r.ensure(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	var out []wish.Wish
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	if out == nil {
		out = []wish.Wish{}
	}
	return out, nil
}

func (r *FileRepo) Save(ctx context.Context, wishes []wish.Wish) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.write(wishes)
}

// write replaces the document through a temp file + rename so readers never
// observe a half-written array.
func (r *FileRepo) write(wishes []wish.Wish) error {
	data, err := Encode(wishes)
	if err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".wishes-*.json")
	if err != nil {
		return fmt.Errorf("create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

// Encode serializes wishes the way every backend persists them: a JSON array
// indented with two spaces. A nil slice is written as [].
func Encode(wishes []wish.Wish) ([]byte, error) {
	if wishes == nil {
		wishes = []wish.Wish{}
	}
	data, err := json.MarshalIndent(wishes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode wishes: %w", err)
	}
	return data, nil
}
