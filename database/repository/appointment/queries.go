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

// FindActiveByDate returns the non-cancelled appointment holding the exact
// timestamp, or nil when the slot is free. This is the advisory read; the
// unique_active_slot index is what actually closes the race.
func (r *MongoAppointmentRepo) FindActiveByDate(ctx context.Context, date time.Time, excludeID string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"date":   date,
		"active": true,
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	var appt models.Appointment
	err := r.coll.FindOne(ctx, filter).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check slot at %s: %w", date.Format(time.RFC3339), err)
	}
	return &appt, nil
}

// Find lists appointments matching the filter, newest-slot-first for
// patient views and soonest-first otherwise, with total count for paging.
func (r *MongoAppointmentRepo) Find(ctx context.Context, f Filter) ([]models.Appointment, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.Status != nil {
		filter["status"] = *f.Status
	}
	if f.PatientID != "" {
		filter["patientId"] = f.PatientID
	}
	if f.PractitionerID != "" {
		filter["practitionerId"] = f.PractitionerID
	}
	if f.Unassigned {
		filter["practitionerId"] = nil
	}
	if f.From != nil || f.To != nil {
		dateRange := bson.M{}
		if f.From != nil {
			dateRange["$gte"] = *f.From
		}
		if f.To != nil {
			dateRange["$lte"] = *f.To
		}
		filter["date"] = dateRange
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	sortOrder := 1
	if f.PatientID != "" {
		sortOrder = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: sortOrder}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
		if f.Page > 1 {
			opts.SetSkip((f.Page - 1) * f.Limit)
		}
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, total, nil
}

// BookedSlots returns the occupied timestamps in the range, for the public
// calendar. Cancelled appointments do not hold slots and are excluded.
func (r *MongoAppointmentRepo) BookedSlots(ctx context.Context, from, to time.Time) ([]models.BookedSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"date":   bson.M{"$gte": from, "$lte": to},
		"active": true,
	}
	opts := options.Find().
		SetProjection(bson.M{"date": 1, "status": 1, "_id": 0}).
		SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.BookedSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode booked slots: %w", err)
	}
	return slots, nil
}
