package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aisupport/faq-service/internal/chat"
	"github.com/aisupport/faq-service/internal/model"
	registrystore "github.com/aisupport/faq-service/internal/registry/store"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ChatStore with injectable failures.
type fakeStore struct {
	conv    *model.Conversation
	entries []model.KnowledgeEntry

	loadErr error
	saveErr error
	listErr error

	saves int
}

func (s *fakeStore) LoadConversation(_ context.Context) (*model.Conversation, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.conv, nil
}

func (s *fakeStore) SaveConversation(_ context.Context, conv *model.Conversation) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	copied := *conv
	s.conv = &copied
	return nil
}

func (s *fakeStore) ListKnowledgeEntries(_ context.Context) ([]model.KnowledgeEntry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.entries, nil
}

func (s *fakeStore) InsertKnowledgeEntry(_ context.Context, entry model.KnowledgeEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeStore) Ping(_ context.Context) error  { return nil }
func (s *fakeStore) Close(_ context.Context) error { return nil }

func TestHandleUserMessage_AnswersFromUploadedDocs(t *testing.T) {
	store := &fakeStore{entries: []model.KnowledgeEntry{
		{Filename: "policy.txt", Text: "Our refund policy allows returns within 30 days."},
	}}
	manager := chat.NewManager(store)

	bot, err := manager.HandleUserMessage(context.Background(), "refund")
	require.NoError(t, err)
	require.Equal(t, model.RoleBot, bot.Role)
	require.Contains(t, bot.Text, "Our refund policy allows returns within 30 days.")
	require.Contains(t, bot.Text, "(Answer from uploaded docs)")
	require.False(t, bot.Timestamp.IsZero())
}

func TestHandleUserMessage_LazilyCreatesConversation(t *testing.T) {
	store := &fakeStore{}
	manager := chat.NewManager(store)

	before := time.Now()
	_, err := manager.HandleUserMessage(context.Background(), "hello")
	require.NoError(t, err)

	require.NotNil(t, store.conv)
	require.False(t, store.conv.CreatedAt.Before(before))
	require.Len(t, store.conv.Messages, 2)
}

func TestHandleUserMessage_AppendsUserThenBot(t *testing.T) {
	store := &fakeStore{}
	manager := chat.NewManager(store)

	const turns = 3
	for i := 0; i < turns; i++ {
		_, err := manager.HandleUserMessage(context.Background(), "anything")
		require.NoError(t, err)
	}

	require.Len(t, store.conv.Messages, 2*turns)
	for i, msg := range store.conv.Messages {
		if i%2 == 0 {
			require.Equal(t, model.RoleUser, msg.Role)
		} else {
			require.Equal(t, model.RoleBot, msg.Role)
		}
	}
}

func TestHandleUserMessage_NoMatchStillRecordsTurn(t *testing.T) {
	store := &fakeStore{entries: []model.KnowledgeEntry{
		{Filename: "policy.txt", Text: "Our refund policy allows returns within 30 days."},
	}}
	manager := chat.NewManager(store)

	bot, err := manager.HandleUserMessage(context.Background(), "warranty coverage")
	require.NoError(t, err)
	require.Contains(t, bot.Text, "couldn’t find this in the uploaded documents")
	require.Len(t, store.conv.Messages, 2)
}

func TestHandleUserMessage_RecordsTurnForUnicodeHeavyDoc(t *testing.T) {
	// U+023A grows when lowercased; the turn must still be answered and
	// persisted.
	store := &fakeStore{entries: []model.KnowledgeEntry{
		{Filename: "unicode.txt", Text: strings.Repeat("Ⱥ", 400) + "Refunds take 5 days."},
	}}
	manager := chat.NewManager(store)

	bot, err := manager.HandleUserMessage(context.Background(), "refunds")
	require.NoError(t, err)
	require.Contains(t, bot.Text, "Refunds take 5 days.")
	require.Len(t, store.conv.Messages, 2)
}

func TestHandleUserMessage_SearchFailureIsSoft(t *testing.T) {
	store := &fakeStore{listErr: errors.New("cursor timeout")}
	manager := chat.NewManager(store)

	bot, err := manager.HandleUserMessage(context.Background(), "refund")
	require.NoError(t, err)
	require.Contains(t, bot.Text, "couldn’t search the documents")
	require.Len(t, store.conv.Messages, 2)
}

func TestHandleUserMessage_BlankTextRejectedBeforeLoad(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		store := &fakeStore{loadErr: errors.New("must not be reached")}
		manager := chat.NewManager(store)

		_, err := manager.HandleUserMessage(context.Background(), text)

		var validation *registrystore.ValidationError
		require.ErrorAs(t, err, &validation)
		require.Equal(t, "text", validation.Field)
		require.Zero(t, store.saves)
	}
}

func TestHandleUserMessage_LoadFailureIsFatal(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("connection refused")}
	manager := chat.NewManager(store)

	_, err := manager.HandleUserMessage(context.Background(), "refund")
	require.Error(t, err)
	var validation *registrystore.ValidationError
	require.False(t, errors.As(err, &validation))
}

func TestHandleUserMessage_PersistFailureIsFatal(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("connection reset")}
	manager := chat.NewManager(store)

	_, err := manager.HandleUserMessage(context.Background(), "refund")
	require.Error(t, err)
	require.Zero(t, store.saves)
}
