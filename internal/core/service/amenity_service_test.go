package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/infrastructure/db/memory"
)

func TestAmenityService_Create(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"trimmed name", "  Wifi  ", nil},
		{"exactly fifty", strings.Repeat("a", 50), nil},
		{"fifty one", strings.Repeat("a", 51), domain.ErrValidation},
		{"blank", "   ", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a, err := f.amenities.Create(f.ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if a.Name != strings.TrimSpace(tt.input) {
				t.Fatalf("unexpected name %q", a.Name)
			}
		})
	}
}

func TestAmenityService_Create_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.amenity(t, "Wifi")

	if _, err := f.amenities.Create(f.ctx, "Wifi"); !errors.Is(err, domain.ErrAmenityExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := f.amenities.Create(f.ctx, "WIFI"); err != nil {
		t.Fatalf("names are case-sensitive, got %v", err)
	}
}

func TestAmenityService_Update(t *testing.T) {
	f := newFixture(t)
	wifi := f.amenity(t, "Wifi")
	f.amenity(t, "Pool")

	if _, err := f.amenities.Update(f.ctx, wifi, "Wifi"); err != nil {
		t.Fatalf("renaming to its own name: %v", err)
	}
	if _, err := f.amenities.Update(f.ctx, wifi, "Pool"); !errors.Is(err, domain.ErrAmenityExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := f.amenities.Update(f.ctx, "missing", "Sauna"); !errors.Is(err, domain.ErrAmenityNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	got, err := f.amenities.Update(f.ctx, wifi, "Fast wifi")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Fast wifi" {
		t.Fatalf("unexpected name %q", got.Name)
	}
}

func TestAmenityService_List_OrderedByName(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Wifi", "Kitchen", "Pool"} {
		f.amenity(t, name)
	}

	list, err := f.amenities.List(f.ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.Name)
	}
	if strings.Join(names, ",") != "Kitchen,Pool,Wifi" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestAmenityService_Delete_UnlinksPlaces(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", domain.RoleOwner)
	wifi := f.amenity(t, "Wifi")
	pool := f.amenity(t, "Pool")
	p1 := f.place(t, alice, 1, 1, wifi, pool)
	p2 := f.place(t, alice, 2, 2, wifi)

	if err := f.amenities.Delete(f.ctx, wifi); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.amenities.Get(f.ctx, wifi); !errors.Is(err, domain.ErrAmenityNotFound) {
		t.Fatalf("expected amenity gone, got %v", err)
	}

	for _, id := range []string{p1.ID, p2.ID} {
		stored, err := f.store.Places().FindByID(f.ctx, id)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		for _, aid := range stored.AmenityIDs {
			if aid == wifi {
				t.Fatalf("place %s still links the deleted amenity", id)
			}
		}
	}

	detail, err := f.places.Get(f.ctx, p1.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(detail.Amenities) != 1 || detail.Amenities[0].ID != pool {
		t.Fatalf("expected only pool to remain, got %+v", detail.Amenities)
	}

	if err := f.amenities.Delete(f.ctx, wifi); !errors.Is(err, domain.ErrAmenityNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	var sawDelete bool
	for _, a := range f.audit.actions() {
		if a == domain.AuditAmenityDeleted {
			sawDelete = true
		}
	}
	if !sawDelete {
		t.Fatalf("expected amenity.deleted audit event")
	}
}

func TestAmenityService_Delete_RollsBackOnFailure(t *testing.T) {
	f := newFixtureWithStore(t, &faultyStore{Store: memory.New(), step: failAmenityDelete, err: errors.New("disk full")})
	alice := f.register(t, "alice", domain.RoleOwner)
	wifi := f.amenity(t, "Wifi")
	pool := f.amenity(t, "Pool")
	p := f.place(t, alice, 1, 1, wifi, pool)

	err := f.amenities.Delete(f.ctx, wifi)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}

	if _, err := f.amenities.Get(f.ctx, wifi); err != nil {
		t.Fatalf("amenity should remain: %v", err)
	}
	stored, err := f.store.Places().FindByID(f.ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(stored.AmenityIDs) != 2 || stored.AmenityIDs[0] != wifi || stored.AmenityIDs[1] != pool {
		t.Fatalf("links should be restored, got %v", stored.AmenityIDs)
	}
}
