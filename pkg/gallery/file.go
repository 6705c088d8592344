package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	apperr "github.com/matzehuels/tapestry/pkg/errors"
)

// FileStore is a file-based piece store for CLI applications.
// Pieces are stored as JSON files named by their ID.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based piece store.
// If baseDir is empty, defaults to ~/.config/tapestry/gallery/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "tapestry", "gallery")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create gallery dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) piecePath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Put(ctx context.Context, p *Piece) error {
	if err := apperr.ValidatePieceID(p.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal piece: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial piece.
	tmp := s.piecePath(p.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write piece file: %w", err)
	}
	if err := os.Rename(tmp, s.piecePath(p.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write piece file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Piece, error) {
	if err := apperr.ValidatePieceID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(s.piecePath(id), id)
}

func (s *FileStore) read(path, id string) (*Piece, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read piece file: %w", err)
	}

	var p Piece
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse piece %s: %w", id, err)
	}
	return &p, nil
}

func (s *FileStore) List(ctx context.Context, opts ListOptions) ([]*Piece, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read gallery dir: %w", err)
	}

	var pieces []*Piece
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		p, err := s.read(filepath.Join(s.baseDir, entry.Name()), id)
		if err != nil {
			continue // skip unreadable entries
		}
		if opts.Owner != "" && p.Owner != opts.Owner {
			continue
		}
		pieces = append(pieces, p)
	}

	sort.SliceStable(pieces, func(i, j int) bool {
		if !pieces[i].CreatedAt.Equal(pieces[j].CreatedAt) {
			return pieces[i].CreatedAt.After(pieces[j].CreatedAt)
		}
		return pieces[i].ID < pieces[j].ID
	})
	if opts.Limit > 0 && len(pieces) > opts.Limit {
		pieces = pieces[:opts.Limit]
	}
	return pieces, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := apperr.ValidatePieceID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.piecePath(id)); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return fmt.Errorf("remove piece file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for piece files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
