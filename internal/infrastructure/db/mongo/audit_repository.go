package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

const collectionPackageEvents = "package_events"

// AuditRepository stores the package transition trail.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionPackageEvents)}
}

type transitionEventDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PackageID string             `bson:"package_id"`
	From      string             `bson:"from"`
	To        string             `bson:"to"`
	Actor     string             `bson:"actor"`
	Timestamp time.Time          `bson:"timestamp"`
}

func (r *AuditRepository) InsertTransition(ctx context.Context, ev *domain.TransitionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, transitionEventDoc{
		PackageID: ev.PackageID,
		From:      string(ev.From),
		To:        string(ev.To),
		Actor:     ev.Actor,
		Timestamp: ev.Timestamp.UTC(),
	})
	return err
}

func (r *AuditRepository) FindByPackage(ctx context.Context, packageID string) ([]*domain.TransitionEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"package_id": packageID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.TransitionEvent
	for cur.Next(ctx) {
		var doc transitionEventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, &domain.TransitionEvent{
			PackageID: doc.PackageID,
			From:      domain.PackageState(doc.From),
			To:        domain.PackageState(doc.To),
			Actor:     doc.Actor,
			Timestamp: doc.Timestamp,
		})
	}
	return out, cur.Err()
}

// EnsureIndexes creates the per-package trail lookup index.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "package_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}
