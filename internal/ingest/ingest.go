// Package ingest turns uploaded documents into knowledge-base entries.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/aisupport/faq-service/internal/model"
	registrystore "github.com/aisupport/faq-service/internal/registry/store"
	"github.com/aisupport/faq-service/internal/security"
	"github.com/charmbracelet/log"
)

// Pipeline stores decoded documents as knowledge-base entries.
type Pipeline struct {
	store registrystore.ChatStore
}

// NewPipeline returns a Pipeline backed by the given store.
func NewPipeline(store registrystore.ChatStore) *Pipeline {
	return &Pipeline{store: store}
}

// Ingest decodes the uploaded content and stores it as a single new
// knowledge-base entry. Duplicate filenames are permitted; each upload
// becomes an independently searchable entry. Decode or store failures
// create nothing.
func (p *Pipeline) Ingest(ctx context.Context, filename string, content []byte) error {
	if len(content) == 0 {
		return &registrystore.ValidationError{Field: "file", Message: "file content is required"}
	}

	text, err := DecodeText(filename, content)
	if err != nil {
		return err
	}

	entry := model.KnowledgeEntry{
		Filename:   filename,
		Text:       text,
		UploadedAt: time.Now(),
	}
	if err := p.store.InsertKnowledgeEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to store knowledge entry: %w", err)
	}

	security.CountDocumentIngested()
	log.Info("Ingested document", "filename", filename, "bytes", len(content), "chars", len(text))
	return nil
}
