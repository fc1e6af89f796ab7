package allocator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/samber/oops"

	"github.com/amrahli/newsgate/internal/shared/errors"
)

const counterFile = "id_counter.json"

type counterDoc struct {
	CurrentID int64 `json:"current_id"`
}

// Allocator issues monotonically increasing string IDs backed by a persisted
// counter file. A crash between read and persist may skip a value, which is
// acceptable: IDs need uniqueness, not density.
type Allocator struct {
	path string
	mu   sync.Mutex
}

// New creates an allocator persisting its counter under basePath.
func New(basePath string) (*Allocator, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create storage directory").Wrap(err)
	}
	return &Allocator{path: filepath.Join(basePath, counterFile)}, nil
}

// Next returns the current counter value as a string and persists current+1.
func (a *Allocator) Next() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.read()
	if err != nil {
		return "", err
	}

	next := doc.CurrentID
	doc.CurrentID = next + 1

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", oops.With("counter_file", a.path).Wrap(err)
	}
	if err := os.WriteFile(a.path, data, 0644); err != nil {
		return "", oops.With("counter_file", a.path, "context", "failed to persist id counter").Wrap(errors.ErrStorage)
	}

	return strconv.FormatInt(next, 10), nil
}

func (a *Allocator) read() (*counterDoc, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &counterDoc{CurrentID: 0}, nil
		}
		return nil, oops.With("counter_file", a.path, "context", "failed to read id counter").Wrap(errors.ErrStorage)
	}

	var doc counterDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.With("counter_file", a.path, "context", "corrupt id counter").Wrap(errors.ErrStorage)
	}
	return &doc, nil
}
