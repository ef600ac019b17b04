package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/fafnerzhang/codetrekking/internal/domain"
	"github.com/fafnerzhang/codetrekking/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const runCollectionName = "planning_runs"

// mongoRunRepository implements repository.RunRepository
type mongoRunRepository struct {
	collection *mongo.Collection
}

// NewMongoRunRepository creates a new planning-run repository.
func NewMongoRunRepository(db *mongo.Database) repository.RunRepository {
	return &mongoRunRepository{
		collection: db.Collection(runCollectionName),
	}
}

// Save upserts a run record keyed by its run id.
func (r *mongoRunRepository) Save(ctx context.Context, run *domain.PlanningRun) error {
	if run.RunID == "" {
		return errors.New("run requires a run id")
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	filter := bson.M{"_id": run.RunID}
	update := bson.M{"$set": run}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	return nil
}

// GetByID retrieves a single run record.
func (r *mongoRunRepository) GetByID(ctx context.Context, runID string) (*domain.PlanningRun, error) {
	var run domain.PlanningRun
	filter := bson.M{"_id": runID}
	err := r.collection.FindOne(ctx, filter).Decode(&run)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// List retrieves recent runs, newest first.
func (r *mongoRunRepository) List(ctx context.Context, limit int64) ([]domain.PlanningRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []domain.PlanningRun
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Empty slice when nothing recorded yet (not an error).
	return runs, nil
}

// EnsureRunIndexes creates necessary indexes. Call during startup.
func EnsureRunIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal; queries still work unindexed.
		log.Printf("WARN: could not create indexes on %s: %v", runCollectionName, err)
	}
}
