package meetingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("meetings")}
}

// ErrEndNotAfterStart is returned when a meeting's end time does not come
// strictly after its start time.
var ErrEndNotAfterStart = errors.New("meeting end time must be after start time")

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Meeting, error) {
	var m models.Meeting
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// Create inserts a new meeting. The creator is always a participant.
func (s *Store) Create(ctx context.Context, m models.Meeting) (models.Meeting, error) {
	if !m.EndTime.After(m.StartTime) {
		return models.Meeting{}, ErrEndNotAfterStart
	}

	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.TitleCI = text.Fold(m.Title)
	m.StartTime = m.StartTime.UTC()
	m.EndTime = m.EndTime.UTC()
	if !m.HasParticipant(m.CreatorID) {
		m.ParticipantIDs = append(m.ParticipantIDs, m.CreatorID)
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// Update holds the editable meeting fields.
type Update struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}

// UpdateInfo updates a meeting's editable fields. Participant changes go
// through AddParticipant / RemoveParticipant.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, upd Update) error {
	if !upd.EndTime.After(upd.StartTime) {
		return ErrEndNotAfterStart
	}

	set := bson.M{
		"title":       upd.Title,
		"title_ci":    text.Fold(upd.Title),
		"description": upd.Description,
		"location":    upd.Location,
		"start_time":  upd.StartTime.UTC(),
		"end_time":    upd.EndTime.UTC(),
		"updated_at":  time.Now().UTC(),
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddParticipant adds a user to the meeting's participant list. Adding an
// existing participant is a no-op.
func (s *Store) AddParticipant(ctx context.Context, meetingID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, meetingID, bson.M{
		"$addToSet": bson.M{"participant_ids": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveParticipant removes a user from the meeting's participant list.
func (s *Store) RemoveParticipant(ctx context.Context, meetingID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, meetingID, bson.M{
		"$pull": bson.M{"participant_ids": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a meeting by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByTeam removes all meetings belonging to a team.
// Returns the number of documents deleted.
func (s *Store) DeleteByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByTeam returns a team's meetings sorted by start time.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID, limit int64) ([]models.Meeting, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "start_time", Value: 1},
		{Key: "_id", Value: 1},
	})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"team_id": teamID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var meetings []models.Meeting
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// MeetingsOverlapping returns meetings that overlap [start, end) and involve
// any of the given participants, excluding the meeting with excludeID (pass
// NilObjectID to exclude nothing). The strict-overlap window is expressed
// directly in the filter: existing.start < end AND existing.end > start, so
// back-to-back meetings never match.
func (s *Store) MeetingsOverlapping(ctx context.Context, participantIDs []primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) ([]models.Meeting, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"participant_ids": bson.M{"$in": participantIDs},
		"start_time":      bson.M{"$lt": end},
		"end_time":        bson.M{"$gt": start},
	}
	if excludeID != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "start_time", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var meetings []models.Meeting
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// MeetingsForUserInRange returns meetings the user created or participates
// in whose start time falls in [start, end). Feeds the calendar aggregator.
func (s *Store) MeetingsForUserInRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.Meeting, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"creator_id": userID},
			{"participant_ids": userID},
		},
		"start_time": bson.M{"$gte": start, "$lt": end},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "start_time", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var meetings []models.Meeting
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// UpcomingForUser returns the user's next meetings at or after now.
func (s *Store) UpcomingForUser(ctx context.Context, userID primitive.ObjectID, now time.Time, limit int64) ([]models.Meeting, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"creator_id": userID},
			{"participant_ids": userID},
		},
		"start_time": bson.M{"$gte": now},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "start_time", Value: 1},
		{Key: "_id", Value: 1},
	})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var meetings []models.Meeting
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}
