package repository

import (
	"github.com/amrahli/newsgate/internal/modules/linkage/domain"
)

// Repository defines the interface for linkage document persistence
// This abstraction allows easy replacement of storage implementations
// (e.g., FileStorage -> PostgreSQL -> MongoDB)
type Repository interface {
	Load() (*domain.Document, error)
	Save(doc *domain.Document) error
	// Update runs a load-mutate-save cycle as one serialized operation.
	Update(fn func(doc *domain.Document) error) error
}
