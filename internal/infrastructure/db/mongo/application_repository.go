package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

const collectionApplications = "applications"

// ApplicationRepository implements ports.ApplicationRepository using MongoDB.
type ApplicationRepository struct {
	col *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{col: db.Collection(collectionApplications)}
}

type applicationDoc struct {
	ID           string         `bson:"_id"`
	ApplicantID  string         `bson:"applicant_id"`
	PermitTypeID string         `bson:"permit_type_id"`
	Status       string         `bson:"status"`
	FormData     map[string]any `bson:"form_data"`
	ReviewerID   string         `bson:"reviewer_id,omitempty"`
	StaffNotes   string         `bson:"staff_notes,omitempty"`
	SubmittedAt  *time.Time     `bson:"submitted_at,omitempty"`
	ReviewedAt   *time.Time     `bson:"reviewed_at,omitempty"`
	CreatedAt    time.Time      `bson:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at"`
}

func toApplicationDoc(a *domain.Application) applicationDoc {
	formData := a.FormData
	if formData == nil {
		formData = map[string]any{}
	}
	return applicationDoc{
		ID:           a.ID,
		ApplicantID:  a.ApplicantID,
		PermitTypeID: a.PermitTypeID,
		Status:       string(a.Status),
		FormData:     formData,
		ReviewerID:   a.ReviewerID,
		StaffNotes:   a.StaffNotes,
		SubmittedAt:  a.SubmittedAt,
		ReviewedAt:   a.ReviewedAt,
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
}

func (d applicationDoc) toDomain() *domain.Application {
	formData := d.FormData
	if formData == nil {
		formData = map[string]any{}
	}
	return &domain.Application{
		ID:           d.ID,
		ApplicantID:  d.ApplicantID,
		PermitTypeID: d.PermitTypeID,
		Status:       domain.ApplicationStatus(d.Status),
		FormData:     formData,
		ReviewerID:   d.ReviewerID,
		StaffNotes:   d.StaffNotes,
		SubmittedAt:  d.SubmittedAt,
		ReviewedAt:   d.ReviewedAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toApplicationDoc(app)); err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d applicationDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return d.toDomain(), nil
}

// List returns matching applications newest first. A zero Limit returns
// every match.
func (r *ApplicationRepository) List(ctx context.Context, f ports.ListApplicationsFilter) ([]*domain.Application, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.ApplicantID != "" {
		filter["applicant_id"] = f.ApplicantID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.PermitTypeID != "" {
		filter["permit_type_id"] = f.PermitTypeID
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		page := max(f.Page, 1)
		opts.SetSkip(int64((page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}
	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update replaces the stored application only while its status still equals
// expected. A lost race yields domain.ErrConcurrentUpdate.
func (r *ApplicationRepository) Update(ctx context.Context, app *domain.Application, expected domain.ApplicationStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": app.ID, "status": string(expected)}
	res, err := r.col.ReplaceOne(ctx, filter, toApplicationDoc(app))
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": app.ID})
		if err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		if n == 0 {
			return domain.ErrApplicationNotFound
		}
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// CreatedBetween returns applications created in [from, to).
func (r *ApplicationRepository) CreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"created_at": bson.M{"$gte": from.UTC(), "$lt": to.UTC()}}
	return r.find(ctx, filter, options.Find().SetProjection(bson.M{"form_data": 0}))
}

func (r *ApplicationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Application, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	var docs []applicationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}
	out := make([]*domain.Application, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the applications collection.
func (r *ApplicationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "applicant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}
