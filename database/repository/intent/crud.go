package intentRepo

import (
	"context"
	"errors"
	"time"

	"rentiva/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a new intent audit record and returns its ID.
func (r *mongoIntentRepo) Create(ctx context.Context, record models.IntentAuditRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetBySessionID fetches all audit records for one checkout session.
func (r *mongoIntentRepo) GetBySessionID(ctx context.Context, sessionID string) ([]models.IntentAuditRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.IntentAuditRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkReleased flags one intent as released after a saga compensation call.
func (r *mongoIntentRepo) MarkReleased(ctx context.Context, intentID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"intent_id": intentID},
		bson.M{"$set": bson.M{"status": models.IntentAuditReleased, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("intent audit record not found")
	}
	return nil
}

// MarkPaid flags every intent of a session as paid once the aggregate payment
// reaches its terminal paid state.
func (r *mongoIntentRepo) MarkPaid(ctx context.Context, sessionID string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"status": models.IntentAuditPaid, "updated_at": time.Now()}},
	)
	return err
}
