package service

import (
	"sort"

	"github.com/samber/lo"
	"github.com/samber/oops"

	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
	"github.com/amrahli/newsgate/internal/modules/linkage/domain"
	"github.com/amrahli/newsgate/internal/modules/linkage/repository"
	"github.com/amrahli/newsgate/internal/shared/errors"
)

// Service handles linkage configuration logic
type Service struct {
	repo repository.Repository
}

// New creates a new linkage service
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// Exists reports whether a linkage with the given name is present.
func (s *Service) Exists(name string) (bool, error) {
	doc, err := s.repo.Load()
	if err != nil {
		return false, err
	}
	_, ok := doc.Linkages[name]
	return ok, nil
}

// Get retrieves a copy of a linkage by name.
func (s *Service) Get(name string) (*domain.Linkage, error) {
	doc, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	l, ok := doc.Linkages[name]
	if !ok {
		return nil, errors.ErrLinkageNotFound
	}
	return l, nil
}

// Names returns all linkage names in sorted order.
func (s *Service) Names() ([]string, error) {
	doc, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	names := lo.Keys(doc.Linkages)
	sort.Strings(names)
	return names, nil
}

// All returns the full document for read-only rendering.
func (s *Service) All() (map[string]*domain.Linkage, error) {
	doc, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	return doc.Linkages, nil
}

// Create persists a fully configured linkage with is_active=true.
func (s *Service) Create(name string, resources []domain.Resource, moderationChatID int64, publicationChannel string) error {
	if len(resources) == 0 {
		return errors.ErrNoResources
	}
	return s.repo.Update(func(doc *domain.Document) error {
		if _, ok := doc.Linkages[name]; ok {
			return errors.ErrLinkageExists
		}
		doc.Linkages[name] = &domain.Linkage{
			Resources:          resources,
			ModerationChatID:   moderationChatID,
			PublicationChannel: publicationChannel,
			IsActive:           true,
			PendingItems:       []itemDomain.NewsItem{},
		}
		return nil
	})
}

// Delete removes a linkage immediately and unconditionally.
func (s *Service) Delete(name string) error {
	return s.repo.Update(func(doc *domain.Document) error {
		if _, ok := doc.Linkages[name]; !ok {
			return errors.ErrLinkageNotFound
		}
		delete(doc.Linkages, name)
		return nil
	})
}

// ToggleActive flips the active flag and returns the new state. Pausing does
// not clear the pending queue.
func (s *Service) ToggleActive(name string) (bool, error) {
	var active bool
	err := s.repo.Update(func(doc *domain.Document) error {
		l, ok := doc.Linkages[name]
		if !ok {
			return errors.ErrLinkageNotFound
		}
		l.IsActive = !l.IsActive
		active = l.IsActive
		return nil
	})
	return active, err
}

// AddResources appends resources to a linkage.
func (s *Service) AddResources(name string, resources []domain.Resource) error {
	if len(resources) == 0 {
		return errors.ErrNoResources
	}
	return s.repo.Update(func(doc *domain.Document) error {
		l, ok := doc.Linkages[name]
		if !ok {
			return errors.ErrLinkageNotFound
		}
		l.Resources = append(l.Resources, resources...)
		return nil
	})
}

// RemoveResource removes a resource by URL. Removing an unknown URL is an
// error so the operator gets feedback instead of silent success.
func (s *Service) RemoveResource(name string, url string) error {
	return s.repo.Update(func(doc *domain.Document) error {
		l, ok := doc.Linkages[name]
		if !ok {
			return errors.ErrLinkageNotFound
		}
		filtered := lo.Reject(l.Resources, func(r domain.Resource, _ int) bool {
			return r.URL == url
		})
		if len(filtered) == len(l.Resources) {
			return oops.With("linkage", name, "url", url).Errorf("resource not found")
		}
		l.Resources = filtered
		return nil
	})
}

// SetPrompt updates the restyle instruction of a linkage.
func (s *Service) SetPrompt(name string, prompt string) error {
	return s.repo.Update(func(doc *domain.Document) error {
		l, ok := doc.Linkages[name]
		if !ok {
			return errors.ErrLinkageNotFound
		}
		l.Prompt = prompt
		return nil
	})
}
