package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/amirasaad/transfers/pkg/config"
	"github.com/amirasaad/transfers/pkg/domain/events"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Document is the shape of an audit entry stored in MongoDB. Amounts are kept
// as decimal strings so no precision is lost.
type Document struct {
	ID              string         `bson:"_id"`
	Event           string         `bson:"event"`
	EventType       string         `bson:"event_type"`
	TransferID      string         `bson:"transfer_id"`
	AccountID       string         `bson:"account_id,omitempty"`
	Amount          string         `bson:"amount"`
	PreviousBalance string         `bson:"previous_balance,omitempty"`
	NewBalance      string         `bson:"new_balance,omitempty"`
	Status          string         `bson:"status"`
	Timestamp       time.Time      `bson:"timestamp"`
	Metadata        map[string]any `bson:"metadata,omitempty"`
}

// ToDocument maps an audit entry to its stored form.
func ToDocument(entry events.AuditEntry) Document {
	doc := Document{
		ID:         entry.EventID.String(),
		Event:      string(entry.Kind),
		EventType:  entry.EventType,
		TransferID: entry.TransferID.String(),
		Amount:     entry.Amount.String(),
		Status:     entry.Status,
		Timestamp:  entry.Timestamp,
		Metadata:   entry.Metadata,
	}
	if entry.AccountID != nil {
		doc.AccountID = entry.AccountID.String()
	}
	if entry.PreviousBalance != nil {
		doc.PreviousBalance = entry.PreviousBalance.String()
	}
	if entry.NewBalance != nil {
		doc.NewBalance = entry.NewBalance.String()
	}
	return doc
}

// MongoSink inserts one document per audit event.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSink connects to cfg.URL and verifies the connection.
func NewMongoSink(ctx context.Context, cfg *config.Mongo) (*MongoSink, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo audit sink: connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo audit sink: ping: %w", err)
	}
	return &MongoSink{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Handle is an eventbus.HandlerFunc. Redelivered events are ignored.
func (s *MongoSink) Handle(ctx context.Context, e events.Event) error {
	entry, ok := events.ToAuditEntry(e)
	if !ok {
		return nil
	}
	_, err := s.collection.InsertOne(ctx, ToDocument(entry))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (s *MongoSink) Close() error {
	return s.client.Disconnect(context.Background())
}
