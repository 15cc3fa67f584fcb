package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kinecare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Insert stores a new appointment. The partial unique index on date makes
// this the atomic slot reservation: when two bookers race for the same
// timestamp exactly one insert succeeds and the other gets ErrSlotTaken.
func (r *MongoAppointmentRepo) Insert(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Active = appt.Status.HoldsSlot()

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// GetByID retrieves an appointment by its unique ID.
func (r *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

// UpdateIf applies patch only when expect still holds, as one server-side
// conditional write. A miss is diagnosed with a follow-up read so callers
// can tell a vanished document from a lost race.
func (r *MongoAppointmentRepo) UpdateIf(ctx context.Context, id string, expect Expect, patch Patch) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	if len(expect.StatusIn) > 0 {
		filter["status"] = bson.M{"$in": expect.StatusIn}
	}
	if expect.Unassigned {
		filter["practitionerId"] = nil
	}

	set := bson.M{"updatedAt": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
		set["active"] = patch.Status.HoldsSlot()
	}
	if patch.PaymentStatus != nil {
		set["paymentStatus"] = *patch.PaymentStatus
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.PractitionerID != nil {
		set["practitionerId"] = *patch.PractitionerID
	}
	if patch.Service != nil {
		set["service"] = *patch.Service
	}
	if patch.Subservice != nil {
		set["subservice"] = *patch.Subservice
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if patch.CancellationReason != nil {
		set["cancellationReason"] = *patch.CancellationReason
	}

	update := bson.M{"$set": set}
	if patch.AppendHistory != nil {
		update["$push"] = bson.M{"modificationHistory": *patch.AppendHistory}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}

	if mongo.IsDuplicateKeyError(err) {
		// Date change collided with another active appointment.
		return nil, ErrSlotTaken
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update appointment %s: %w", id, err)
	}

	// Nothing matched: either the document is gone or the precondition no
	// longer holds.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrPreconditionFailed
}

// Delete physically removes an appointment document.
func (r *MongoAppointmentRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete appointment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
