package model

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is a single exchange in the conversation. Immutable once created;
// ordering within a conversation is insertion order.
type Message struct {
	Role      Role      `json:"role"      bson:"role"`
	Text      string    `json:"text"      bson:"text"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Conversation is the singleton ordered log of user/bot exchanges.
// Exactly one conversation document exists in the store at any time; it is
// lazily created on the first message and rewritten in full on every request.
type Conversation struct {
	Messages  []Message `json:"messages"  bson:"messages"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// KnowledgeEntry is a stored reference document contributing searchable text.
// Created once by ingestion, never updated or deleted. Filenames are not
// guaranteed unique; duplicates are independently searchable.
type KnowledgeEntry struct {
	Filename   string    `json:"filename"   bson:"filename"`
	Text       string    `json:"text"       bson:"text"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploaded_at"`
}
