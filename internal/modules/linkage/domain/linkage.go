package domain

import (
	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
)

// Resource is a single source URL bound to a linkage.
type Resource struct {
	URL string `json:"url"`
}

// Linkage binds a list of source resources to a moderation chat and a
// publication channel, together with the queue of items awaiting a decision.
type Linkage struct {
	Resources          []Resource            `json:"resources"`
	ModerationChatID   int64                 `json:"moderation_chat_id,omitempty"`
	PublicationChannel string                `json:"publication_channel,omitempty"`
	Prompt             string                `json:"prompt,omitempty"`
	IsActive           bool                  `json:"is_active"`
	PendingItems       []itemDomain.NewsItem `json:"pending_items"`
}

// Configured reports whether the linkage has both targets required for the
// moderation flow.
func (l *Linkage) Configured() bool {
	return l.ModerationChatID != 0 && l.PublicationChannel != ""
}

// Document is the root of the persisted store. The Linkages map is always
// non-nil once a document passes through Normalize.
type Document struct {
	Linkages map[string]*Linkage `json:"linkages"`
}

// NewDocument returns an empty valid document.
func NewDocument() *Document {
	return &Document{Linkages: map[string]*Linkage{}}
}

// Normalize repairs the shape of a freshly decoded document so every access
// site can trust it: non-nil map, non-nil slices per linkage.
func (d *Document) Normalize() {
	if d.Linkages == nil {
		d.Linkages = map[string]*Linkage{}
	}
	for _, l := range d.Linkages {
		if l.Resources == nil {
			l.Resources = []Resource{}
		}
		if l.PendingItems == nil {
			l.PendingItems = []itemDomain.NewsItem{}
		}
	}
}
