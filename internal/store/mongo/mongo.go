package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dmarkhas/roomcast/internal/store"
)

const connectTimeout = 10 * time.Second

// MongoStore implements store.Store for MongoDB. Messages live in the
// "messages" collection, the user directory in "users". A (room, date)
// index backs the per-room history query.
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	messages *mongo.Collection
}

type userDoc struct {
	ID           string         `bson:"_id"`
	Name         string         `bson:"name"`
	Status       string         `bson:"status"`
	UnreadCounts map[string]int `bson:"unread_counts"`
}

type messageDoc struct {
	ID      string `bson:"_id"`
	Content string `bson:"content"`
	From    string `bson:"from"`
	To      string `bson:"to"`
	Time    string `bson:"time"`
	Date    string `bson:"date"`
}

// New connects to MongoDB and returns a store backed by dbName.
func New(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:   client,
		users:    db.Collection("users"),
		messages: db.Collection("messages"),
	}

	index := mongo.IndexModel{
		Keys: bson.D{{Key: "to", Value: 1}, {Key: "date", Value: 1}},
	}
	if _, err := s.messages.Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create message index: %w", err)
	}

	return s, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// ==== UserStore implementation ====

// ListUsers returns the full roster.
func (s *MongoStore) ListUsers(ctx context.Context) ([]store.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w: %w", store.ErrPersistence, err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w: %w", store.ErrPersistence, err)
	}

	users := make([]store.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, userFromDoc(d))
	}
	return users, nil
}

// GetUser retrieves a user by id.
func (s *MongoStore) GetUser(ctx context.Context, id string) (*store.User, error) {
	var d userDoc
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %q: %w", id, store.ErrUserNotFound)
		}
		return nil, fmt.Errorf("find user: %w: %w", store.ErrPersistence, err)
	}

	u := userFromDoc(d)
	return &u, nil
}

// SaveUser persists the user's status and unread counter snapshot.
func (s *MongoStore) SaveUser(ctx context.Context, u *store.User) error {
	update := bson.M{"$set": bson.M{
		"name":          u.Name,
		"status":        string(u.Status),
		"unread_counts": u.UnreadCounts,
	}}
	result, err := s.users.UpdateOne(ctx, bson.M{"_id": u.ID}, update)
	if err != nil {
		return fmt.Errorf("update user: %w: %w", store.ErrPersistence, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %q: %w", u.ID, store.ErrUserNotFound)
	}
	return nil
}

// ==== MessageStore implementation ====

// AppendMessage persists msg, assigning its id.
func (s *MongoStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	doc := messageDoc{
		ID:      msg.ID,
		Content: msg.Content,
		From:    msg.From,
		To:      msg.To,
		Time:    msg.Time,
		Date:    msg.Date,
	}
	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert message: %w: %w", store.ErrPersistence, err)
	}
	return nil
}

// ListRoomMessages returns every message addressed to room, in insertion order.
func (s *MongoStore) ListRoomMessages(ctx context.Context, room string) ([]store.Message, error) {
	// Natural order matches insertion order for an append-only collection.
	cur, err := s.messages.Find(ctx, bson.M{"to": room})
	if err != nil {
		return nil, fmt.Errorf("find messages: %w: %w", store.ErrPersistence, err)
	}

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w: %w", store.ErrPersistence, err)
	}

	messages := make([]store.Message, 0, len(docs))
	for _, d := range docs {
		messages = append(messages, store.Message{
			ID:      d.ID,
			Content: d.Content,
			From:    d.From,
			To:      d.To,
			Time:    d.Time,
			Date:    d.Date,
		})
	}
	return messages, nil
}

func userFromDoc(d userDoc) store.User {
	counts := d.UnreadCounts
	if counts == nil {
		counts = map[string]int{}
	}
	return store.User{
		ID:           d.ID,
		Name:         d.Name,
		Status:       store.UserStatus(d.Status),
		UnreadCounts: counts,
	}
}
