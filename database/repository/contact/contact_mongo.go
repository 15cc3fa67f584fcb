package contactRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kinecare/database"
	"kinecare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no submission matches the lookup.
var ErrNotFound = errors.New("contact submission not found")

// ContactRepository persists contact-form submissions.
type ContactRepository interface {
	Insert(ctx context.Context, c *models.Contact) error
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	List(ctx context.Context, status models.ContactStatus) ([]models.Contact, error)
	UpdateStatus(ctx context.Context, id string, status models.ContactStatus, notes string) error
}

// MongoContactRepo implements ContactRepository using MongoDB.
type MongoContactRepo struct {
	coll *mongo.Collection
}

// NewMongoContactRepo creates a new contact repository.
func NewMongoContactRepo() ContactRepository {
	coll := database.DB().Collection("contacts")
	repo := &MongoContactRepo{coll: coll}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	})
	if err != nil {
		fmt.Printf("failed to create contact indexes: %v\n", err)
	}
	return repo
}

func (r *MongoContactRepo) Insert(ctx context.Context, c *models.Contact) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to insert contact submission: %w", err)
	}
	return nil
}

func (r *MongoContactRepo) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Contact
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch contact %s: %w", id, err)
	}
	return &c, nil
}

func (r *MongoContactRepo) List(ctx context.Context, status models.ContactStatus) ([]models.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.Contact
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode contact submissions: %w", err)
	}
	return items, nil
}

func (r *MongoContactRepo) UpdateStatus(ctx context.Context, id string, status models.ContactStatus, notes string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": status, "updatedAt": time.Now()}
	if notes != "" {
		set["notes"] = notes
	}
	if status == models.ContactReplied {
		set["repliedAt"] = time.Now()
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update contact %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
