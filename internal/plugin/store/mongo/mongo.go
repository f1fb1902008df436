package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aisupport/faq-service/internal/config"
	"github.com/aisupport/faq-service/internal/model"
	registrymigrate "github.com/aisupport/faq-service/internal/registry/migrate"
	registrystore "github.com/aisupport/faq-service/internal/registry/store"
	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func init() {
	registrystore.Register(registrystore.Plugin{
		Name: "mongo",
		Loader: func(ctx context.Context) (registrystore.ChatStore, error) {
			cfg := config.FromContext(ctx)
			opts := options.Client().ApplyURI(cfg.DBURL)
			if cfg.DBMaxOpenConns > 0 {
				opts.SetMaxPoolSize(uint64(cfg.DBMaxOpenConns))
			}
			if cfg.DBMaxIdleConns > 0 {
				opts.SetMinPoolSize(uint64(cfg.DBMaxIdleConns))
			}
			client, err := mongo.Connect(opts)
			if err != nil {
				return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
			}
			if err := client.Ping(ctx, nil); err != nil {
				return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
			}
			return &MongoStore{
				client:            client,
				db:                client.Database(cfg.DBName),
				conversationsName: cfg.ConversationsCollection,
				faqsName:          cfg.FAQsCollection,
			}, nil
		},
	})

	registrymigrate.Register(registrymigrate.Plugin{Order: 100, Migrator: &mongoMigrator{}})
}

type mongoMigrator struct{}

func (m *mongoMigrator) Name() string { return "mongo-schema" }

func (m *mongoMigrator) Migrate(ctx context.Context) error {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return fmt.Errorf("mongo migration: no config in context")
	}
	if !cfg.DatastoreMigrateAtStart || cfg.DatastoreType != "mongo" {
		return nil
	}

	log.Info("Running migration", "name", m.Name())
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.DBURL))
	if err != nil {
		return fmt.Errorf("mongo migration: failed to connect: %w", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.DBName)

	collections := map[string][]mongo.IndexModel{
		cfg.ConversationsCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		cfg.FAQsCollection: {
			{Keys: bson.D{{Key: "uploaded_at", Value: 1}}},
		},
	}

	for name, indexes := range collections {
		db.CreateCollection(ctx, name)
		if len(indexes) > 0 {
			if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
				return fmt.Errorf("mongo migration: failed to create indexes for %s: %w", name, err)
			}
		}
	}

	log.Info("MongoDB schema migration complete")
	return nil
}

// MongoStore implements ChatStore using MongoDB.
type MongoStore struct {
	client            *mongo.Client
	db                *mongo.Database
	conversationsName string
	faqsName          string
}

// ForceImport is a no-op variable that can be referenced to ensure this package's init() runs.
var ForceImport = 0

// --- MongoDB document types ---

type conversationDoc struct {
	Messages  []messageDoc `bson:"messages"`
	CreatedAt time.Time    `bson:"created_at"`
}

type messageDoc struct {
	Role      string    `bson:"role"`
	Text      string    `bson:"text"`
	Timestamp time.Time `bson:"timestamp"`
}

type faqDoc struct {
	Filename   string    `bson:"filename"`
	Text       string    `bson:"text"`
	UploadedAt time.Time `bson:"uploaded_at"`
}

// --- Collection accessors ---

func (s *MongoStore) conversations() *mongo.Collection { return s.db.Collection(s.conversationsName) }
func (s *MongoStore) faqs() *mongo.Collection          { return s.db.Collection(s.faqsName) }

// --- Conversation ---

// LoadConversation fetches the singleton conversation document. The filter
// is empty: the conversation has no identifying key beyond existence. Sorted
// by created_at descending so a stray duplicate from a historical race still
// resolves to the newest record.
func (s *MongoStore) LoadConversation(ctx context.Context) (*model.Conversation, error) {
	var doc conversationDoc
	err := s.conversations().FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	conv := &model.Conversation{
		Messages:  make([]model.Message, len(doc.Messages)),
		CreatedAt: doc.CreatedAt,
	}
	for i, m := range doc.Messages {
		conv.Messages[i] = model.Message{
			Role:      model.Role(m.Role),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
	}
	return conv, nil
}

// SaveConversation rewrites the full conversation document with an empty-
// filter upsert. Last write wins under concurrent requests.
func (s *MongoStore) SaveConversation(ctx context.Context, conv *model.Conversation) error {
	doc := conversationDoc{
		Messages:  make([]messageDoc, len(conv.Messages)),
		CreatedAt: conv.CreatedAt,
	}
	for i, m := range conv.Messages {
		doc.Messages[i] = messageDoc{
			Role:      string(m.Role),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
	}

	_, err := s.conversations().UpdateOne(ctx, bson.M{},
		bson.M{"$set": doc},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// --- Knowledge base ---

// ListKnowledgeEntries returns all entries sorted by upload time ascending,
// making the retrieval scan order explicit rather than relying on the
// store's natural iteration order.
func (s *MongoStore) ListKnowledgeEntries(ctx context.Context) ([]model.KnowledgeEntry, error) {
	cur, err := s.faqs().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	var docs []faqDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge entries: %w", err)
	}

	entries := make([]model.KnowledgeEntry, len(docs))
	for i, d := range docs {
		entries[i] = model.KnowledgeEntry{
			Filename:   d.Filename,
			Text:       d.Text,
			UploadedAt: d.UploadedAt,
		}
	}
	return entries, nil
}

func (s *MongoStore) InsertKnowledgeEntry(ctx context.Context, entry model.KnowledgeEntry) error {
	_, err := s.faqs().InsertOne(ctx, faqDoc{
		Filename:   entry.Filename,
		Text:       entry.Text,
		UploadedAt: entry.UploadedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert knowledge entry: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
