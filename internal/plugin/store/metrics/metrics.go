package metrics

import (
	"context"
	"time"

	"github.com/aisupport/faq-service/internal/model"
	"github.com/aisupport/faq-service/internal/registry/store"
	"github.com/aisupport/faq-service/internal/security"
)

// Wrap returns a ChatStore that records StoreLatency for every operation.
func Wrap(inner store.ChatStore) store.ChatStore {
	return &metricsStore{inner: inner}
}

type metricsStore struct {
	inner store.ChatStore
}

func observe(op string, start time.Time) {
	security.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *metricsStore) LoadConversation(ctx context.Context) (*model.Conversation, error) {
	defer observe("load_conversation", time.Now())
	return m.inner.LoadConversation(ctx)
}

func (m *metricsStore) SaveConversation(ctx context.Context, conv *model.Conversation) error {
	defer observe("save_conversation", time.Now())
	return m.inner.SaveConversation(ctx, conv)
}

func (m *metricsStore) ListKnowledgeEntries(ctx context.Context) ([]model.KnowledgeEntry, error) {
	defer observe("list_knowledge_entries", time.Now())
	return m.inner.ListKnowledgeEntries(ctx)
}

func (m *metricsStore) InsertKnowledgeEntry(ctx context.Context, entry model.KnowledgeEntry) error {
	defer observe("insert_knowledge_entry", time.Now())
	return m.inner.InsertKnowledgeEntry(ctx, entry)
}

func (m *metricsStore) Ping(ctx context.Context) error {
	defer observe("ping", time.Now())
	return m.inner.Ping(ctx)
}

func (m *metricsStore) Close(ctx context.Context) error {
	return m.inner.Close(ctx)
}
