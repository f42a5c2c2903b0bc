package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

const collectionPermitTypes = "permit_types"

type PermitTypeRepository struct {
	col *mongo.Collection
}

func NewPermitTypeRepository(db *mongo.Database) *PermitTypeRepository {
	return &PermitTypeRepository{col: db.Collection(collectionPermitTypes)}
}

type formFieldDoc struct {
	Name     string `bson:"name"`
	Label    string `bson:"label,omitempty"`
	Type     string `bson:"type"`
	Required bool   `bson:"required"`
}

type permitTypeDoc struct {
	ID          string         `bson:"_id"`
	Name        string         `bson:"name"`
	Slug        string         `bson:"slug"`
	Category    string         `bson:"category"`
	Description string         `bson:"description,omitempty"`
	Fields      []formFieldDoc `bson:"form_schema"`
}

func toPermitTypeDoc(pt *domain.PermitType) permitTypeDoc {
	fields := make([]formFieldDoc, 0, len(pt.FormSchema.Fields))
	for _, f := range pt.FormSchema.Fields {
		fields = append(fields, formFieldDoc{Name: f.Name, Label: f.Label, Type: f.Type, Required: f.Required})
	}
	return permitTypeDoc{
		ID:          pt.ID,
		Name:        pt.Name,
		Slug:        pt.Slug,
		Category:    pt.Category,
		Description: pt.Description,
		Fields:      fields,
	}
}

func (d permitTypeDoc) toDomain() *domain.PermitType {
	fields := make([]domain.FormField, 0, len(d.Fields))
	for _, f := range d.Fields {
		fields = append(fields, domain.FormField{Name: f.Name, Label: f.Label, Type: f.Type, Required: f.Required})
	}
	return &domain.PermitType{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Category:    d.Category,
		Description: d.Description,
		FormSchema:  domain.FormSchema{Fields: fields},
	}
}

func (r *PermitTypeRepository) List(ctx context.Context, category string) ([]*domain.PermitType, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list permit types: %w", err)
	}
	var docs []permitTypeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode permit types: %w", err)
	}
	out := make([]*domain.PermitType, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PermitTypeRepository) FindByID(ctx context.Context, id string) (*domain.PermitType, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *PermitTypeRepository) FindBySlug(ctx context.Context, slug string) (*domain.PermitType, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *PermitTypeRepository) findOne(ctx context.Context, filter bson.M) (*domain.PermitType, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d permitTypeDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPermitTypeNotFound
		}
		return nil, fmt.Errorf("find permit type: %w", err)
	}
	return d.toDomain(), nil
}

// UpsertBySlug inserts pt or refreshes the existing entry with the same slug.
// An existing entry keeps its id so applications stay linked.
func (r *PermitTypeRepository) UpsertBySlug(ctx context.Context, pt *domain.PermitType) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	d := toPermitTypeDoc(pt)
	update := bson.M{
		"$set": bson.M{
			"name":        d.Name,
			"category":    d.Category,
			"description": d.Description,
			"form_schema": d.Fields,
		},
		"$setOnInsert": bson.M{"_id": d.ID},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"slug": d.Slug}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert permit type: %w", err)
	}
	return nil
}

func (r *PermitTypeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	return err
}
