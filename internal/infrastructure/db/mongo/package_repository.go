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
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

const collectionPackages = "packages"

// PackageRepository implements ports.PackageRepository on MongoDB. State
// transitions are conditional FindOneAndUpdate calls keyed by id and expected
// source state, so concurrent actors cannot overwrite each other.
type PackageRepository struct {
	col *mongo.Collection
}

func NewPackageRepository(db *mongo.Database) *PackageRepository {
	return &PackageRepository{col: db.Collection(collectionPackages)}
}

type packageDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Description     string             `bson:"description"`
	Weight          float64            `bson:"weight"`
	Image           string             `bson:"image"`
	ReceiverName    string             `bson:"receiver_name"`
	ReceiverSurname string             `bson:"receiver_surname"`
	ReceiverCity    string             `bson:"receiver_city"`
	ReceiverStreet  string             `bson:"receiver_street"`
	ReceiverPhone   string             `bson:"receiver_phone"`
	Proprietor      string             `bson:"proprietor"`
	Traveler        string             `bson:"traveler,omitempty"`
	State           string             `bson:"state"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func packageToDoc(p *domain.Package) packageDoc {
	return packageDoc{
		Description:     p.Description,
		Weight:          p.Weight,
		Image:           p.Image,
		ReceiverName:    p.ReceiverName,
		ReceiverSurname: p.ReceiverSurname,
		ReceiverCity:    p.ReceiverCity,
		ReceiverStreet:  p.ReceiverStreet,
		ReceiverPhone:   p.ReceiverPhone,
		Proprietor:      p.Proprietor,
		Traveler:        p.Traveler,
		State:           string(p.State),
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
}

func (d packageDoc) toDomain() *domain.Package {
	return &domain.Package{
		ID:              d.ID.Hex(),
		Description:     d.Description,
		Weight:          d.Weight,
		Image:           d.Image,
		ReceiverName:    d.ReceiverName,
		ReceiverSurname: d.ReceiverSurname,
		ReceiverCity:    d.ReceiverCity,
		ReceiverStreet:  d.ReceiverStreet,
		ReceiverPhone:   d.ReceiverPhone,
		Proprietor:      d.Proprietor,
		Traveler:        d.Traveler,
		State:           domain.PackageState(d.State),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (r *PackageRepository) Create(ctx context.Context, p *domain.Package) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, packageToDoc(p))
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *PackageRepository) FindByID(ctx context.Context, id string) (*domain.Package, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPackageNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc packageDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *PackageRepository) Find(ctx context.Context, filter ports.PackageFilter) ([]*domain.Package, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := packageQuery(filter)

	// Creation time ascending keeps pagination deterministic.
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Package
	for cur.Next(ctx) {
		var doc packageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

// packageQuery composes the filter predicates. State inclusion/exclusion and
// proprietor equality/exclusion target the same fields, so predicates are
// joined with $and instead of merged into one document, where a second
// predicate on a field would silently overwrite the first.
func packageQuery(filter ports.PackageFilter) bson.M {
	var conds []bson.M
	if filter.State != "" {
		conds = append(conds, bson.M{"state": string(filter.State)})
	}
	if len(filter.ExcludeStates) > 0 {
		excluded := make([]string, len(filter.ExcludeStates))
		for i, s := range filter.ExcludeStates {
			excluded[i] = string(s)
		}
		conds = append(conds, bson.M{"state": bson.M{"$nin": excluded}})
	}
	if filter.Proprietor != "" {
		conds = append(conds, bson.M{"proprietor": filter.Proprietor})
	}
	if filter.NotProprietor != "" {
		conds = append(conds, bson.M{"proprietor": bson.M{"$ne": filter.NotProprietor}})
	}
	if filter.Traveler != "" {
		conds = append(conds, bson.M{"traveler": filter.Traveler})
	}
	if filter.ReceiverCity != "" {
		conds = append(conds, bson.M{"receiver_city": filter.ReceiverCity})
	}

	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	default:
		return bson.M{"$and": conds}
	}
}

// UpdateDetails applies the proprietor's edits only while the package is still
// Publicado; a no-match on an existing package reports ErrInvalidTransition.
func (r *PackageRepository) UpdateDetails(ctx context.Context, id string, patch ports.PackagePatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPackageNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "state": string(domain.StatePublished)}
	update := bson.M{"$set": bson.M{
		"description":      patch.Description,
		"weight":           patch.Weight,
		"image":            patch.Image,
		"receiver_name":    patch.ReceiverName,
		"receiver_surname": patch.ReceiverSurname,
		"receiver_city":    patch.ReceiverCity,
		"receiver_street":  patch.ReceiverStreet,
		"receiver_phone":   patch.ReceiverPhone,
		"updated_at":       time.Now().UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missReason(ctx, oid)
	}
	return nil
}

// Transition is the compare-and-set write: the update only takes effect when
// the stored state is one of from. Exactly one of two racing callers matches.
func (r *PackageRepository) Transition(ctx context.Context, id string, from []domain.PackageState, to domain.PackageState, upd ports.TransitionUpdate) (*domain.Package, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPackageNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	set := bson.M{"state": string(to), "updated_at": time.Now().UTC()}
	if upd.SetTraveler != "" {
		set["traveler"] = upd.SetTraveler
	}
	update := bson.M{"$set": set}
	if upd.ClearTraveler {
		update["$unset"] = bson.M{"traveler": ""}
	}

	filter := bson.M{"_id": oid, "state": bson.M{"$in": sources}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc packageDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.missReason(ctx, oid)
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// missReason distinguishes an unknown package from a lost state race.
func (r *PackageRepository) missReason(ctx context.Context, oid primitive.ObjectID) error {
	err := r.col.FindOne(ctx, bson.M{"_id": oid}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrPackageNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

func (r *PackageRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPackageNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrPackageNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes backing the matching and dashboard queries.
func (r *PackageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "receiver_city", Value: 1}}},
		{Keys: bson.D{{Key: "proprietor", Value: 1}}},
		{Keys: bson.D{{Key: "traveler", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
