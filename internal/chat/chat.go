// Package chat owns the singleton conversation: it appends the user
// message, consults the retrieval engine, appends the bot reply, and
// persists the updated log.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aisupport/faq-service/internal/model"
	registrystore "github.com/aisupport/faq-service/internal/registry/store"
	"github.com/aisupport/faq-service/internal/retrieval"
	"github.com/aisupport/faq-service/internal/security"
	"github.com/charmbracelet/log"
)

// Fixed bot reply texts.
const (
	answerSuffix    = "\n\n(Answer from uploaded docs)"
	noMatchReply    = "I couldn’t find this in the uploaded documents. Please upload relevant FAQs."
	searchDownReply = "Sorry, I couldn’t search the documents. Please try again."
)

// Manager handles user messages against the singleton conversation.
type Manager struct {
	store registrystore.ChatStore
}

// NewManager returns a Manager backed by the given store.
func NewManager(store registrystore.ChatStore) *Manager {
	return &Manager{store: store}
}

// HandleUserMessage records a user message and the bot's reply, returning
// the bot message.
//
// Storage failures while loading or persisting the conversation abort the
// request. A failure while reading the knowledge base is downgraded to a
// fallback reply so the conversation turn is still recorded.
func (m *Manager) HandleUserMessage(ctx context.Context, text string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, &registrystore.ValidationError{Field: "text", Message: "message text is required"}
	}

	conv, err := m.store.LoadConversation(ctx)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		conv = &model.Conversation{CreatedAt: time.Now()}
	}

	conv.Messages = append(conv.Messages, model.Message{
		Role:      model.RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	})

	bot := model.Message{
		Role:      model.RoleBot,
		Text:      m.answer(ctx, text),
		Timestamp: time.Now(),
	}
	conv.Messages = append(conv.Messages, bot)

	if err := m.store.SaveConversation(ctx, conv); err != nil {
		return model.Message{}, fmt.Errorf("failed to persist conversation: %w", err)
	}
	return bot, nil
}

func (m *Manager) answer(ctx context.Context, query string) string {
	entries, err := m.store.ListKnowledgeEntries(ctx)
	if err != nil {
		log.Warn("Knowledge base search failed", "err", err)
		security.CountMessage("search_failed")
		return searchDownReply
	}
	if excerpt, ok := retrieval.FindAnswer(query, entries); ok {
		security.CountMessage("answered")
		return excerpt + answerSuffix
	}
	security.CountMessage("no_match")
	return noMatchReply
}
