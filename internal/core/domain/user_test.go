package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":      RoleAdmin,
		"Reviewer":   RoleReviewer,
		"CONTRACTOR": RoleContractor,
		" applicant": RoleApplicant,
		"staff":      RoleReviewer,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseRole("root"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestRole_Capabilities(t *testing.T) {
	if !RoleAdmin.IsStaff() || !RoleReviewer.IsStaff() {
		t.Fatalf("admin and reviewer must be staff")
	}
	if RoleApplicant.IsStaff() || RoleContractor.IsStaff() {
		t.Fatalf("applicant and contractor must not be staff")
	}
	if !RoleAdmin.Can(CapManageUsers) || RoleReviewer.Can(CapManageUsers) {
		t.Fatalf("only admin manages users")
	}
	if Role("GHOST").Can(CapSubmitApplications) {
		t.Fatalf("unknown role must hold no capability")
	}
}

func TestRole_PermissionsIsCopy(t *testing.T) {
	perms := RoleReviewer.Permissions()
	if len(perms) != 4 {
		t.Fatalf("expected 4 reviewer permissions, got %v", perms)
	}
	perms[0] = "tampered"
	if RoleReviewer.Permissions()[0] != "read:permits" {
		t.Fatalf("permissions must not be shared")
	}
}

func TestPrincipal_IsOwnerOf(t *testing.T) {
	app := &Application{ApplicantID: "u1"}
	if !(Principal{UserID: "u1"}).IsOwnerOf(app) {
		t.Fatalf("expected owner")
	}
	if (Principal{UserID: "u2"}).IsOwnerOf(app) {
		t.Fatalf("expected non-owner")
	}
	if (Principal{}).IsOwnerOf(&Application{}) {
		t.Fatalf("empty principal must never own")
	}
}

func TestValidationError(t *testing.T) {
	if NewValidationError(nil) != nil {
		t.Fatalf("expected nil for empty fields")
	}
	err := NewValidationError(map[string]string{"b": "b is required", "a": "a is required"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("validation error must be an invalid argument")
	}
	if err.Error() != "validation failed: a is required; b is required" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
