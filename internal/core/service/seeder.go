package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

const onlineApplicationsCategory = "Online Permit Applications"

// catalog is the municipal permit catalog loaded at startup.
var catalog = []struct{ name, slug string }{
	{"Accessory Dwelling Unit Application", "accessory-dwelling-unit"},
	{"After Hour Special Inspection Request", "after-hour-special-inspection"},
	{"Building Permit Application", "building-permit"},
	{"Certificate of Inspection Application", "certificate-of-inspection"},
	{"Conservation Commission Application", "conservation-commission"},
	{"Certificate of Occupancy Application", "certificate-of-occupancy"},
	{"D.B.A. Zoning Board Approval Application", "dba-zoning-board-approval"},
	{"Electrical Permit Application", "electrical-permit"},
	{"Gas Permit Application", "gas-permit"},
	{"Paving Permit Application", "paving-permit"},
	{"Plumbing Permit Application", "plumbing-permit"},
	{"Preliminary Site Plan/Zoning Review - Request For Comments", "preliminary-site-plan-zoning-review"},
	{"Quincy Paving License and/or Quincy Builders License Application (New and Renewal)", "quincy-builders-paving-license"},
	{"Sheet Metal Permit Application", "sheet-metal-permit"},
	{"Short-Term Rental Registration Application", "short-term-rental-registration"},
	{"Small Cell Wireless Permit Application", "small-cell-wireless-permit"},
	{"Temporary Extension of Premises Permit Application", "temporary-extension-premises"},
	{"Ticket Appeal Request Form (Not Traffic Tickets)", "ticket-appeal-request"},
	{"Zoning Board of Appeal Application", "zoning-board-of-appeal"},
}

// sampleProperties is the number of assessor records seeded for lookups.
const sampleProperties = 5

// DefaultFormSchema is the schema every seeded permit type starts with.
func DefaultFormSchema() domain.FormSchema {
	return domain.FormSchema{Fields: []domain.FormField{
		{Name: "applicantName", Label: "Applicant Name", Type: domain.FieldText, Required: true},
		{Name: "address", Label: "Property Address", Type: domain.FieldText, Required: true},
		{Name: "description", Label: "Description of Work", Type: domain.FieldTextarea, Required: true},
		{Name: "contactPhone", Label: "Contact Phone", Type: domain.FieldTel, Required: true},
		{Name: "contactEmail", Label: "Contact Email", Type: domain.FieldEmail, Required: true},
	}}
}

// SeedAdmin describes the bootstrap administrator. An empty Email skips it.
type SeedAdmin struct {
	Email    string
	Password string
}

// Seeder loads reference data. Safe to run on every start.
type Seeder struct {
	permitTypes ports.PermitTypeRepository
	properties  ports.PropertyRecordRepository
	users       ports.UserRepository
	log         zerolog.Logger
}

func NewSeeder(
	permitTypes ports.PermitTypeRepository,
	properties ports.PropertyRecordRepository,
	users ports.UserRepository,
	log zerolog.Logger,
) *Seeder {
	return &Seeder{permitTypes: permitTypes, properties: properties, users: users, log: log}
}

func (s *Seeder) Seed(ctx context.Context, admin SeedAdmin) error {
	for _, entry := range catalog {
		pt := &domain.PermitType{
			ID:          uuid.NewString(),
			Name:        entry.name,
			Slug:        entry.slug,
			Category:    onlineApplicationsCategory,
			Description: "Apply for " + entry.name,
			FormSchema:  DefaultFormSchema(),
		}
		if err := s.permitTypes.UpsertBySlug(ctx, pt); err != nil {
			return fmt.Errorf("seed permit type %s: %w", entry.slug, err)
		}
	}
	s.log.Info().Int("count", len(catalog)).Msg("permit catalog seeded")

	for i := 1; i <= sampleProperties; i++ {
		rec := &domain.PropertyRecord{
			ID:         uuid.NewString(),
			Address:    fmt.Sprintf("%d Main Street, Quincy, MA", i),
			ParcelID:   fmt.Sprintf("Q%d", 1000+i),
			RecordType: "Residential",
			Metadata:   map[string]any{"yearBuilt": 1950 + i*10},
		}
		if err := s.properties.UpsertByParcelID(ctx, rec); err != nil {
			return fmt.Errorf("seed property record %s: %w", rec.ParcelID, err)
		}
	}

	if admin.Email == "" {
		return nil
	}
	n, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	user, err := newUser(ctx, s.users, newUserParams{
		Email:     admin.Email,
		Password:  admin.Password,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      domain.RoleAdmin,
		Now:       time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("bootstrap admin created")
	return nil
}
