package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// SeedPermissions upserts the shipping-stage permission tags so the employee
// gate works on a fresh database. Existing tags are left untouched.
func SeedPermissions(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	col := db.Collection(collectionPermissions)
	now := time.Now().UTC()

	tags := []string{
		domain.PermissionDelivery,
		domain.PermissionShipping,
		domain.PermissionReceiving,
		domain.PermissionComplete,
	}
	for _, name := range tags {
		_, err := col.UpdateOne(ctx,
			bson.M{"name": name},
			bson.M{"$setOnInsert": bson.M{"name": name, "created_at": now}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
