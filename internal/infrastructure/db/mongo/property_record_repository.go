package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

const collectionPropertyRecords = "property_records"

type PropertyRecordRepository struct {
	col *mongo.Collection
}

func NewPropertyRecordRepository(db *mongo.Database) *PropertyRecordRepository {
	return &PropertyRecordRepository{col: db.Collection(collectionPropertyRecords)}
}

type propertyRecordDoc struct {
	ID         string         `bson:"_id"`
	Address    string         `bson:"address"`
	ParcelID   string         `bson:"parcel_id"`
	RecordType string         `bson:"record_type,omitempty"`
	Metadata   map[string]any `bson:"metadata,omitempty"`
}

func (d propertyRecordDoc) toDomain() *domain.PropertyRecord {
	return &domain.PropertyRecord{
		ID:         d.ID,
		Address:    d.Address,
		ParcelID:   d.ParcelID,
		RecordType: d.RecordType,
		Metadata:   d.Metadata,
	}
}

func (r *PropertyRecordRepository) Search(ctx context.Context, query string) ([]*domain.PropertyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if query != "" {
		filter["$or"] = bson.A{
			bson.M{"address": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}},
			bson.M{"parcel_id": query},
		}
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "address", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("search property records: %w", err)
	}
	var docs []propertyRecordDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode property records: %w", err)
	}
	out := make([]*domain.PropertyRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PropertyRecordRepository) UpsertByParcelID(ctx context.Context, rec *domain.PropertyRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"address":     rec.Address,
			"record_type": rec.RecordType,
			"metadata":    rec.Metadata,
		},
		"$setOnInsert": bson.M{"_id": rec.ID},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"parcel_id": rec.ParcelID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert property record: %w", err)
	}
	return nil
}

func (r *PropertyRecordRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parcel_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "address", Value: 1}}},
	})
	return err
}
