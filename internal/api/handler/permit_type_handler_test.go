package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

type stubPermitTypeService struct {
	types []*domain.PermitType
}

func (s *stubPermitTypeService) List(_ context.Context, category string) ([]*domain.PermitType, error) {
	var out []*domain.PermitType
	for _, pt := range s.types {
		if category == "" || pt.Category == category {
			out = append(out, pt)
		}
	}
	return out, nil
}

func (s *stubPermitTypeService) Get(_ context.Context, id string) (*domain.PermitType, error) {
	for _, pt := range s.types {
		if pt.ID == id {
			return pt, nil
		}
	}
	return nil, domain.ErrPermitTypeNotFound
}

func (s *stubPermitTypeService) GetBySlug(_ context.Context, slug string) (*domain.PermitType, error) {
	for _, pt := range s.types {
		if pt.Slug == slug {
			return pt, nil
		}
	}
	return nil, domain.ErrPermitTypeNotFound
}

func newPermitTypeStub() *stubPermitTypeService {
	return &stubPermitTypeService{types: []*domain.PermitType{
		{ID: "pt-1", Name: "Fence", Slug: "fence", Category: "building"},
		{ID: "pt-2", Name: "Block Party", Slug: "block-party", Category: "events"},
	}}
}

func TestPermitTypeHandler_ListByCategory(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/permit-types?category=events", "", nil)

	if err := NewPermitTypeHandler(newPermitTypeStub()).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"count":1`) || !strings.Contains(body, "block-party") {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestPermitTypeHandler_GetAndSlug(t *testing.T) {
	h := NewPermitTypeHandler(newPermitTypeStub())

	c, rec := newJSONContext(http.MethodGet, "/permit-types/pt-1", "", nil)
	c.SetParamNames("id")
	c.SetParamValues("pt-1")
	if err := h.Get(c); err != nil || !strings.Contains(rec.Body.String(), "Fence") {
		t.Fatalf("get: %v %s", err, rec.Body.String())
	}

	c, _ = newJSONContext(http.MethodGet, "/permit-types/by-slug/pool", "", nil)
	c.SetParamNames("slug")
	c.SetParamValues("pool")
	if err := h.GetBySlug(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
