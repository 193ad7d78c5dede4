package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"line-dealer-bot/models"
)

const chatStatesCollection = "chat_states"

// ChatStateStore persists per-user chat modes.
type ChatStateStore struct {
	collection *mongo.Collection
}

func NewChatStateStore(db *mongo.Database) *ChatStateStore {
	return &ChatStateStore{collection: db.Collection(chatStatesCollection)}
}

// FindState retrieves a user's chat state. A nil state means the user has
// never been switched to human mode.
func (s *ChatStateStore) FindState(ctx context.Context, userID string) (*models.ChatState, error) {
	var state models.ChatState
	err := s.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&state)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &state, nil
}

// SetMode upserts a user's chat mode. Switching to human mode also stamps
// last_human_activity_at so the stale-session sweep can find the session
// later.
func (s *ChatStateStore) SetMode(ctx context.Context, userID string, mode models.ChatMode) (*models.ChatState, error) {
	now := time.Now()

	set := bson.M{
		"mode":       mode,
		"updated_at": now,
	}
	if mode == models.ModeHuman {
		set["last_human_activity_at"] = now
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var state models.ChatState
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&state)
	if err != nil {
		slog.Error("Failed to set chat mode",
			"userID", userID,
			"mode", mode,
			"error", err)
		return nil, err
	}

	slog.Info("Chat mode updated", "userID", userID, "mode", mode)
	return &state, nil
}

// RevertStale flips every human-mode session idle since before cutoff back to
// automated mode in one batch update. It returns the affected user IDs and
// the number of updated documents; zero matches is a normal outcome.
func (s *ChatStateStore) RevertStale(ctx context.Context, cutoff time.Time) ([]string, int64, error) {
	staleFilter := bson.M{
		"mode":                   models.ModeHuman,
		"last_human_activity_at": bson.M{"$lt": cutoff},
	}

	cursor, err := s.collection.Find(ctx, staleFilter)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var stale []models.ChatState
	if err := cursor.All(ctx, &stale); err != nil {
		return nil, 0, err
	}

	if len(stale) == 0 {
		return []string{}, 0, nil
	}

	userIDs := make([]string, 0, len(stale))
	for _, state := range stale {
		userIDs = append(userIDs, state.UserID)
	}

	// Repeat the staleness conditions in the update filter so a session that
	// was touched between the read and the write stays in human mode.
	filter := bson.M{
		"user_id":                bson.M{"$in": userIDs},
		"mode":                   models.ModeHuman,
		"last_human_activity_at": bson.M{"$lt": cutoff},
	}
	update := bson.M{
		"$set": bson.M{
			"mode":       models.ModeAutomated,
			"updated_at": time.Now(),
		},
	}

	result, err := s.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		slog.Error("Failed to revert stale sessions", "error", err)
		return nil, 0, err
	}

	slog.Info("Reverted stale human sessions",
		"count", result.ModifiedCount,
		"userIDs", userIDs)

	return userIDs, result.ModifiedCount, nil
}

// StateFinder is the read side of the chat state store.
type StateFinder interface {
	FindState(ctx context.Context, userID string) (*models.ChatState, error)
}

// ModeResolver resolves a user's current chat mode, defaulting to automated
// whenever the state is missing or the store cannot be reached. Defaulting on
// failure keeps the bot answering during store outages instead of going
// silent for that user.
type ModeResolver struct {
	states StateFinder
}

func NewModeResolver(states StateFinder) *ModeResolver {
	return &ModeResolver{states: states}
}

// Mode never fails: store errors are logged and treated as automated.
func (r *ModeResolver) Mode(ctx context.Context, userID string) models.ChatMode {
	state, err := r.states.FindState(ctx, userID)
	if err != nil {
		slog.Warn("Failed to read chat state, defaulting to automated",
			"userID", userID,
			"error", err)
		return models.ModeAutomated
	}

	if state == nil || state.Mode != models.ModeHuman {
		return models.ModeAutomated
	}
	return models.ModeHuman
}
