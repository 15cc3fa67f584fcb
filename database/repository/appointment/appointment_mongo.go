package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"kinecare/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAppointmentRepo implements Repository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo creates a new appointment repository backed by
// the appointments collection.
func NewMongoAppointmentRepo() *MongoAppointmentRepo {
	coll := database.DB().Collection("appointments")
	repo := &MongoAppointmentRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create appointment indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates the indexes the repository relies on. The partial
// unique index on date is the slot-exclusivity guarantee: at most one
// document with active=true may hold a given timestamp, so concurrent
// inserts or reschedules onto the same slot fail at the storage level
// instead of racing a prior read.
func (r *MongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{
			Keys: bson.D{{Key: "date", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}).
				SetName("unique_active_slot"),
		},
		{Keys: bson.D{{Key: "practitionerId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetName("practitioner_date_idx")},
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: -1}}, Options: options.Index().SetName("patient_date_idx")},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status_idx")},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
