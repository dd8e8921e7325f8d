package service

import (
	"context"
	"errors"
	"testing"

	"towtruck/pkg/models"
)

func TestServiceAreaSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.ServiceAreas().Create(ctx, models.ServiceAreaRequest{Name: "Test Area"}); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.ServiceAreas().List(ctx, "Test", 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || len(res.Areas) != 1 || res.Areas[0].Name != "Test Area" || !res.Areas[0].IsActive {
		t.Fatalf("search result = %+v", res)
	}
	if res.Request.PerPage != ServiceAreasPerPage {
		t.Errorf("per page = %d", res.Request.PerPage)
	}
}

func TestServiceAreaUpdateAndActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	off := false
	if _, err := f.svc.ServiceAreas().Update(ctx, f.areas[0].ID, models.ServiceAreaRequest{Name: "Port of Spain", IsActive: &off}); err != nil {
		t.Fatal(err)
	}
	active, err := f.svc.ServiceAreas().Active(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 || active[0].Name != "San Fernando" {
		t.Fatalf("active = %+v", active)
	}

	// is_active falls back to true when omitted
	a, err := f.svc.ServiceAreas().Update(ctx, f.areas[0].ID, models.ServiceAreaRequest{Name: "POS"})
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsActive || a.Name != "POS" {
		t.Errorf("area = %+v", a)
	}

	if _, err := f.svc.ServiceAreas().Update(ctx, 999, models.ServiceAreaRequest{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update unknown = %v", err)
	}
}

func TestServiceAreaDeleteNullsDrivers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "ann@example.com")

	if err := f.svc.ServiceAreas().Delete(ctx, f.areas[0].ID); err != nil {
		t.Fatal(err)
	}
	d, err := f.svc.Drivers().Get(ctx, ann.ID)
	if err != nil {
		t.Fatal(err)
	}
	if d.ServiceAreaID != nil || d.ServiceAreaName != nil {
		t.Errorf("driver still references deleted area: %+v", d)
	}
	if err := f.svc.ServiceAreas().Delete(ctx, f.areas[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v", err)
	}
}

func TestServiceAreaRejectsBlankName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	want := map[string]string{"name": "The name field is required."}

	_, err := f.svc.ServiceAreas().Create(ctx, models.ServiceAreaRequest{Name: "   "})
	if got := fieldsOf(t, err); got["name"] != want["name"] || len(got) != 1 {
		t.Errorf("create fields = %v, want %v", got, want)
	}
	_, err = f.svc.ServiceAreas().Update(ctx, f.areas[0].ID, models.ServiceAreaRequest{Name: "\t"})
	if got := fieldsOf(t, err); got["name"] != want["name"] || len(got) != 1 {
		t.Errorf("update fields = %v, want %v", got, want)
	}

	a, err := f.svc.ServiceAreas().Get(ctx, f.areas[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "Port of Spain" {
		t.Errorf("name = %q, want unchanged", a.Name)
	}
	res, err := f.svc.ServiceAreas().List(ctx, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 3 {
		t.Errorf("total = %d, want 3", res.Total)
	}
}
