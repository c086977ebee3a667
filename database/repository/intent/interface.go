package intentRepo

import (
	"context"

	"rentiva/database"
	"rentiva/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// IntentAuditRepository records every booking intent this subsystem creates,
// so a mid-batch failure always leaves a durable trail of what must be
// released (and of what was released).
type IntentAuditRepository interface {
	Create(ctx context.Context, record models.IntentAuditRecord) (string, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]models.IntentAuditRecord, error)
	MarkReleased(ctx context.Context, intentID string) error
	MarkPaid(ctx context.Context, sessionID string) error
}

type mongoIntentRepo struct {
	coll *mongo.Collection
}

// NewMongoIntentRepo returns a new IntentAuditRepository instance using MongoDB.
func NewMongoIntentRepo() IntentAuditRepository {
	db := database.MongoClient.Database("rentiva")
	return &mongoIntentRepo{
		coll: db.Collection("intent_audit"),
	}
}
