package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Ledger is a per-resource dedup record keyed by item body text, persisted as
// a JSON array so already-delivered items are not re-delivered after restart.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// Ledgers hands out ledger files under a common base path, one per name.
type Ledgers struct {
	basePath string
	mu       sync.Mutex
	open     map[string]*Ledger
}

// NewLedgers creates a ledger collection under basePath.
func NewLedgers(basePath string) (*Ledgers, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create ledger directory").Wrap(err)
	}
	return &Ledgers{basePath: basePath, open: make(map[string]*Ledger)}, nil
}

// For returns the ledger stored as <name>.json, creating the handle on first
// use so concurrent callers share one mutex per file.
func (ls *Ledgers) For(name string) *Ledger {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if l, ok := ls.open[name]; ok {
		return l
	}
	l := &Ledger{path: filepath.Join(ls.basePath, name+".json")}
	ls.open[name] = l
	return l
}

// Seen reports whether text was previously recorded.
func (l *Ledger) Seen(text string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read()
	if err != nil {
		return false, err
	}
	return lo.Contains(entries, text), nil
}

// Record appends text to the ledger.
func (l *Ledger) Record(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read()
	if err != nil {
		return err
	}
	entries = append(entries, text)

	data, err := json.Marshal(entries)
	if err != nil {
		return oops.With("ledger_file", l.path).Wrap(err)
	}
	return os.WriteFile(l.path, data, 0644)
}

func (l *Ledger) read() ([]string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, oops.With("ledger_file", l.path, "context", "failed to read ledger").Wrap(err)
	}
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt ledger only risks re-delivering old items.
		return []string{}, nil
	}
	return entries, nil
}
