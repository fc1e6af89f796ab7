package repository

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"

	"github.com/amrahli/newsgate/internal/modules/linkage/domain"
)

const (
	storeFile  = "linkages.json"
	backupFile = "linkages.json.bak"
)

// FileStorage implements Repository over a single JSON document with a
// sibling backup copy. Every mutation funnels through the mutex, so
// concurrent load-mutate-save cycles cannot lose updates.
type FileStorage struct {
	path       string
	backupPath string
	mu         sync.Mutex
}

// NewFileStorage creates a file-based linkage store under basePath.
func NewFileStorage(basePath string) (Repository, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create storage directory").Wrap(err)
	}

	return &FileStorage{
		path:       filepath.Join(basePath, storeFile),
		backupPath: filepath.Join(basePath, backupFile),
	}, nil
}

func (s *FileStorage) Load() (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStorage) Save(doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

func (s *FileStorage) Update(fn func(doc *domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

// load reads the persisted document, initializing an empty one when the file
// is absent or empty. A malformed document is logged and reinitialized: the
// configuration data is low stakes and operator-correctable, so availability
// wins over strict consistency here.
func (s *FileStorage) load() (*domain.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.reinitialize()
		}
		return nil, oops.With("store_file", s.path, "context", "failed to read linkage store").Wrap(err)
	}

	if len(data) == 0 {
		return s.reinitialize()
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("Linkage store is malformed, reinitializing", "store_file", s.path, "error", err)
		return s.reinitialize()
	}
	if doc.Linkages == nil {
		slog.Warn("Linkage store is missing the linkages key, reinitializing", "store_file", s.path)
		return s.reinitialize()
	}

	doc.Normalize()
	return &doc, nil
}

// save copies the current file to the backup path before overwriting the
// primary; a failed overwrite restores the primary from that backup so the
// store is never left truncated.
func (s *FileStorage) save(doc *domain.Document) error {
	if _, err := os.Stat(s.path); err == nil {
		if err := copyFile(s.path, s.backupPath); err != nil {
			slog.Warn("Failed to create store backup", "backup_file", s.backupPath, "error", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return oops.With("store_file", s.path, "context", "failed to marshal linkage store").Wrap(err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		if _, statErr := os.Stat(s.backupPath); statErr == nil {
			if restoreErr := copyFile(s.backupPath, s.path); restoreErr != nil {
				slog.Error("Failed to restore linkage store from backup", "backup_file", s.backupPath, "error", restoreErr)
			} else {
				slog.Warn("Linkage store restored from backup after failed write", "store_file", s.path)
			}
		}
		return oops.With("store_file", s.path, "context", "failed to write linkage store").Wrap(err)
	}

	return nil
}

func (s *FileStorage) reinitialize() (*domain.Document, error) {
	doc := domain.NewDocument()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, oops.With("store_file", s.path).Wrap(err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return nil, oops.With("store_file", s.path, "context", "failed to initialize linkage store").Wrap(err)
	}
	return doc, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
