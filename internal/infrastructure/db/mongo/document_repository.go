package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

const collectionDocuments = "documents"

type DocumentRepository struct {
	col *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{col: db.Collection(collectionDocuments)}
}

type documentDoc struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Category      string    `bson:"category,omitempty"`
	FilePath      string    `bson:"file_path"`
	MimeType      string    `bson:"mime_type"`
	Size          int64     `bson:"size"`
	ApplicationID string    `bson:"application_id"`
	UploadedBy    string    `bson:"uploaded_by,omitempty"`
	UploadedAt    time.Time `bson:"uploaded_at"`
}

func toDocumentDoc(d *domain.Document) documentDoc {
	return documentDoc{
		ID:            d.ID,
		Name:          d.Name,
		Category:      d.Category,
		FilePath:      d.FilePath,
		MimeType:      d.MimeType,
		Size:          d.Size,
		ApplicationID: d.ApplicationID,
		UploadedBy:    d.UploadedBy,
		UploadedAt:    d.UploadedAt.UTC(),
	}
}

func (d documentDoc) toDomain() *domain.Document {
	return &domain.Document{
		ID:            d.ID,
		Name:          d.Name,
		Category:      d.Category,
		FilePath:      d.FilePath,
		MimeType:      d.MimeType,
		Size:          d.Size,
		ApplicationID: d.ApplicationID,
		UploadedBy:    d.UploadedBy,
		UploadedAt:    d.UploadedAt,
	}
}

// publicFilter matches library documents, which are not tied to an application.
func publicFilter() bson.M {
	return bson.M{"application_id": ""}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDocumentDoc(doc)); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d documentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return d.toDomain(), nil
}

func (r *DocumentRepository) ListPublic(ctx context.Context, category string) ([]*domain.Document, error) {
	filter := publicFilter()
	if category != "" {
		filter["category"] = category
	}
	return r.find(ctx, filter)
}

// SearchPublic matches library documents whose name contains name,
// case-insensitively.
func (r *DocumentRepository) SearchPublic(ctx context.Context, name string) ([]*domain.Document, error) {
	filter := publicFilter()
	filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(name), Options: "i"}
	return r.find(ctx, filter)
}

func (r *DocumentRepository) PublicCategories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := publicFilter()
	filter["category"] = bson.M{"$ne": ""}
	values, err := r.col.Distinct(ctx, "category", filter)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]*domain.Document, error) {
	return r.find(ctx, bson.M{"application_id": applicationID})
}

func (r *DocumentRepository) find(ctx context.Context, filter bson.M) ([]*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var docs []documentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	out := make([]*domain.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *DocumentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "application_id", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	return err
}
