package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

const collectionTravels = "travels"

// TravelRepository implements ports.TravelRepository on MongoDB.
type TravelRepository struct {
	col *mongo.Collection
}

func NewTravelRepository(db *mongo.Database) *TravelRepository {
	return &TravelRepository{col: db.Collection(collectionTravels)}
}

type travelDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Origin          string             `bson:"origin"`
	Destination     string             `bson:"destination"`
	Date            time.Time          `bson:"date"`
	Airport         string             `bson:"airport"`
	Terminal        string             `bson:"terminal"`
	Company         string             `bson:"company"`
	BillingTime     string             `bson:"billing_time"`
	AvailableWeight float64            `bson:"available_weight"`
	Traveler        string             `bson:"traveler"`
	State           bool               `bson:"state"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func travelToDoc(t *domain.Travel) travelDoc {
	return travelDoc{
		Origin:          t.Origin,
		Destination:     t.Destination,
		Date:            t.Date.UTC(),
		Airport:         t.Airport,
		Terminal:        t.Terminal,
		Company:         t.Company,
		BillingTime:     t.BillingTime,
		AvailableWeight: t.AvailableWeight,
		Traveler:        t.Traveler,
		State:           t.State,
		CreatedAt:       t.CreatedAt.UTC(),
		UpdatedAt:       t.UpdatedAt.UTC(),
	}
}

func (d travelDoc) toDomain() *domain.Travel {
	return &domain.Travel{
		ID:              d.ID.Hex(),
		Origin:          d.Origin,
		Destination:     d.Destination,
		Date:            d.Date,
		Airport:         d.Airport,
		Terminal:        d.Terminal,
		Company:         d.Company,
		BillingTime:     d.BillingTime,
		AvailableWeight: d.AvailableWeight,
		Traveler:        d.Traveler,
		State:           d.State,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (r *TravelRepository) Create(ctx context.Context, t *domain.Travel) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, travelToDoc(t))
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid.Hex()
	}
	return nil
}

func (r *TravelRepository) FindByID(ctx context.Context, id string) (*domain.Travel, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTravelNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc travelDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTravelNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *TravelRepository) FindAll(ctx context.Context) ([]*domain.Travel, error) {
	return r.find(ctx, bson.M{}, bson.D{{Key: "date", Value: -1}})
}

func (r *TravelRepository) FindUpcoming(ctx context.Context, now time.Time, origin, destination string) ([]*domain.Travel, error) {
	query := bson.M{
		"date":             bson.M{"$gt": now.UTC()},
		"state":            true,
		"available_weight": bson.M{"$gt": 0},
	}
	if origin != "" {
		query["origin"] = origin
	}
	if destination != "" {
		query["destination"] = destination
	}
	return r.find(ctx, query, bson.D{{Key: "date", Value: 1}})
}

func (r *TravelRepository) FindByTraveler(ctx context.Context, travelerID string) ([]*domain.Travel, error) {
	query := bson.M{"traveler": travelerID, "state": true}
	return r.find(ctx, query, bson.D{{Key: "date", Value: -1}})
}

func (r *TravelRepository) FindActiveUpcoming(ctx context.Context, travelerID string, now time.Time) (*domain.Travel, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{
		"traveler": travelerID,
		"state":    true,
		"date":     bson.M{"$gt": now.UTC()},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: 1}})

	var doc travelDoc
	if err := r.col.FindOne(ctx, query, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoActiveTravel
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// HasUpcoming counts travels with a future date regardless of their state:
// a cancelled upcoming trip still blocks publishing another one.
func (r *TravelRepository) HasUpcoming(ctx context.Context, travelerID string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"traveler": travelerID,
		"date":     bson.M{"$gt": now.UTC()},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TravelRepository) Update(ctx context.Context, id string, t *domain.Travel) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTravelNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"origin":           t.Origin,
		"destination":      t.Destination,
		"date":             t.Date.UTC(),
		"airport":          t.Airport,
		"terminal":         t.Terminal,
		"company":          t.Company,
		"billing_time":     t.BillingTime,
		"available_weight": t.AvailableWeight,
		"updated_at":       t.UpdatedAt.UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTravelNotFound
	}
	return nil
}

func (r *TravelRepository) SetState(ctx context.Context, id string, state bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTravelNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"state": state, "updated_at": time.Now().UTC()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTravelNotFound
	}
	return nil
}

func (r *TravelRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTravelNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTravelNotFound
	}
	return nil
}

func (r *TravelRepository) find(ctx context.Context, query bson.M, sort bson.D) ([]*domain.Travel, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Travel
	for cur.Next(ctx) {
		var doc travelDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

// EnsureIndexes creates the indexes backing availability queries.
func (r *TravelRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "traveler", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "state", Value: 1}}},
		{Keys: bson.D{{Key: "origin", Value: 1}, {Key: "destination", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
