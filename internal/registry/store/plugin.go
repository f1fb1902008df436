package store

import (
	"context"
	"fmt"

	"github.com/aisupport/faq-service/internal/model"
)

// ChatStore defines the data access interface for the FAQ service.
//
// The conversation is a singleton: LoadConversation and SaveConversation
// operate on "the one conversation record" with no identifying key beyond
// its existence. SaveConversation rewrites the full document (last write
// wins); concurrent message requests therefore race on load/persist and the
// later write wins. That consistency gap is inherent to the design, not a
// store bug.
type ChatStore interface {
	// LoadConversation fetches the singleton conversation, or (nil, nil)
	// when none exists yet.
	LoadConversation(ctx context.Context) (*model.Conversation, error)

	// SaveConversation upserts the full conversation document.
	SaveConversation(ctx context.Context, conv *model.Conversation) error

	// ListKnowledgeEntries returns all knowledge-base entries sorted by
	// upload time ascending, so first-match retrieval scans them in
	// insertion order.
	ListKnowledgeEntries(ctx context.Context) ([]model.KnowledgeEntry, error)

	// InsertKnowledgeEntry stores a new entry. No dedup: entries with the
	// same filename coexist.
	InsertKnowledgeEntry(ctx context.Context, entry model.KnowledgeEntry) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Loader creates a ChatStore from config.
type Loader func(ctx context.Context) (ChatStore, error)

// Plugin represents a store plugin.
type Plugin struct {
	Name   string
	Loader Loader
}

var plugins []Plugin

// Register adds a store plugin. Called from init() in plugin packages.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// Names returns all registered store plugin names.
func Names() []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

// Select returns the loader for the named store plugin.
func Select(name string) (Loader, error) {
	for _, p := range plugins {
		if p.Name == name {
			return p.Loader, nil
		}
	}
	return nil, fmt.Errorf("unknown store %q; valid: %v", name, Names())
}
