package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/infrastructure/db/memory"
)

func validRegistration() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: "Alice",
		LastName:  "Martin",
		Email:     "  Alice@Example.COM ",
		Username:  "alice",
		Password:  "secret1",
		Role:      "owner",
	}
}

func TestIdentityService_Register_Success(t *testing.T) {
	f := newFixture(t)

	u, err := f.identity.Register(f.ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected generated id")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if u.Role != domain.RoleOwner || u.IsAdmin {
		t.Errorf("unexpected role/admin: %s/%v", u.Role, u.IsAdmin)
	}

	stored, err := f.store.Users().FindByID(f.ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.PasswordHash != "hashed:secret1" {
		t.Errorf("expected hashed password, got %q", stored.PasswordHash)
	}
	if got := f.audit.actions(); len(got) != 1 || got[0] != domain.AuditUserRegistered {
		t.Errorf("expected one registration audit event, got %v", got)
	}
}

func TestIdentityService_Register_DefaultsToTraveler(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	in.Role = ""

	u, err := f.identity.Register(f.ctx, in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.Role != domain.RoleTraveler {
		t.Fatalf("expected traveler, got %s", u.Role)
	}
}

func TestIdentityService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ports.RegisterInput)
	}{
		{"blank first name", func(in *ports.RegisterInput) { in.FirstName = "  " }},
		{"long last name", func(in *ports.RegisterInput) { in.LastName = strings.Repeat("x", 51) }},
		{"bad email", func(in *ports.RegisterInput) { in.Email = "not-an-email" }},
		{"blank username", func(in *ports.RegisterInput) { in.Username = "" }},
		{"short password", func(in *ports.RegisterInput) { in.Password = "12345" }},
		{"unknown role", func(in *ports.RegisterInput) { in.Role = "landlord" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validRegistration()
			tt.mutate(&in)

			_, err := f.identity.Register(f.ctx, in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			users, _ := f.store.Users().List(f.ctx)
			if len(users) != 0 {
				t.Fatalf("expected nothing persisted, got %d users", len(users))
			}
		})
	}
}

func TestIdentityService_Register_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	first, err := f.identity.Register(f.ctx, validRegistration())
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}

	dup := validRegistration()
	dup.Email = "ALICE@example.com"
	dup.Username = "alice2"
	dup.FirstName = "Mallory"
	_, err = f.identity.Register(f.ctx, dup)
	if !errors.Is(err, domain.ErrEmailTaken) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected email conflict, got %v", err)
	}

	stored, err := f.identity.Get(f.ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.FirstName != "Alice" {
		t.Fatalf("first record changed: %+v", stored)
	}
}

func TestIdentityService_Register_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	if _, err := f.identity.Register(f.ctx, validRegistration()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	dup := validRegistration()
	dup.Email = "other@example.com"
	_, err := f.identity.Register(f.ctx, dup)
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected username conflict, got %v", err)
	}
}

func TestIdentityService_Authenticate(t *testing.T) {
	f := newFixture(t)
	u, err := f.identity.Register(f.ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{"email any case", "ALICE@example.com", "secret1", nil},
		{"username", "alice", "secret1", nil},
		{"wrong password", "alice", "wrong!!", domain.ErrInvalidCredentials},
		{"unknown user", "nobody", "secret1", domain.ErrInvalidCredentials},
		{"blank identifier", " ", "secret1", domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := f.identity.Authenticate(f.ctx, tt.identifier, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, domain.ErrAuthentication) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate: %v", err)
			}
			if claims.SubjectID != u.ID || claims.Role != domain.RoleOwner {
				t.Fatalf("unexpected claims %+v", claims)
			}
		})
	}
}

func TestIdentityService_Update(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", domain.RoleOwner)
	f.register(t, "bob", domain.RoleTraveler)

	t.Run("partial update leaves other fields", func(t *testing.T) {
		u, err := f.identity.Update(f.ctx, alice.SubjectID, ports.UpdateUserInput{FirstName: ptr("Alicia")})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if u.FirstName != "Alicia" || u.Email != "alice@example.com" {
			t.Fatalf("unexpected user %+v", u)
		}
	})

	t.Run("email owned by another user conflicts", func(t *testing.T) {
		_, err := f.identity.Update(f.ctx, alice.SubjectID, ports.UpdateUserInput{Email: ptr("Bob@example.com")})
		if !errors.Is(err, domain.ErrEmailTaken) {
			t.Fatalf("expected email conflict, got %v", err)
		}
	})

	t.Run("keeping own username is not a conflict", func(t *testing.T) {
		if _, err := f.identity.Update(f.ctx, alice.SubjectID, ports.UpdateUserInput{Username: ptr("alice")}); err != nil {
			t.Fatalf("Update: %v", err)
		}
	})

	t.Run("password is validated and re-hashed", func(t *testing.T) {
		_, err := f.identity.Update(f.ctx, alice.SubjectID, ports.UpdateUserInput{Password: ptr("123")})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, err := f.identity.Update(f.ctx, alice.SubjectID, ports.UpdateUserInput{Password: ptr("newpass1")}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if _, err := f.identity.Authenticate(f.ctx, "alice", "newpass1"); err != nil {
			t.Fatalf("expected new password to authenticate: %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := f.identity.Update(f.ctx, "missing", ports.UpdateUserInput{FirstName: ptr("X")})
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestIdentityService_Delete_CascadesExactly(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice", domain.RoleOwner)
	bob := f.register(t, "bob", domain.RoleTraveler)
	carol := f.register(t, "carol", domain.RoleOwner)
	wifi := f.amenity(t, "Wifi")

	p1 := f.place(t, alice, 1, 1, wifi)
	p2 := f.place(t, alice, 2, 2)
	f.review(t, bob, p1.ID, 4)
	f.review(t, bob, p2.ID, 3)

	unrelated := f.place(t, carol, 3, 3, wifi)
	byAlice := f.review(t, alice, unrelated.ID, 5)
	survivor := f.review(t, bob, unrelated.ID, 2)

	if err := f.identity.Delete(f.ctx, alice.SubjectID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := f.identity.Get(f.ctx, alice.SubjectID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected alice gone, got %v", err)
	}
	for _, id := range []string{p1.ID, p2.ID} {
		if _, err := f.places.Get(f.ctx, id); !errors.Is(err, domain.ErrPlaceNotFound) {
			t.Errorf("expected place %s gone, got %v", id, err)
		}
	}
	if _, err := f.reviews.Get(f.ctx, byAlice.ID); !errors.Is(err, domain.ErrReviewNotFound) {
		t.Errorf("expected alice's review gone, got %v", err)
	}

	all, err := f.reviews.List(f.ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].ID != survivor.ID {
		t.Fatalf("expected only the unrelated review to survive, got %+v", all)
	}

	detail, err := f.places.Get(f.ctx, unrelated.ID)
	if err != nil {
		t.Fatalf("unrelated place: %v", err)
	}
	if len(detail.Amenities) != 1 || detail.ReviewCount != 1 {
		t.Fatalf("unrelated place changed: %+v", detail)
	}
	if _, err := f.identity.Get(f.ctx, bob.SubjectID); err != nil {
		t.Fatalf("bob should survive: %v", err)
	}
}

func TestIdentityService_Delete_RollsBackOnFailure(t *testing.T) {
	f := newFixtureWithStore(t, &faultyStore{Store: memory.New(), step: failDeleteByAuthor, err: errors.New("disk full")})

	alice := f.register(t, "alice", domain.RoleOwner)
	bob := f.register(t, "bob", domain.RoleTraveler)
	p := f.place(t, alice, 1, 1)
	f.review(t, bob, p.ID, 4)

	err := f.identity.Delete(f.ctx, alice.SubjectID)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}

	if _, err := f.identity.Get(f.ctx, alice.SubjectID); err != nil {
		t.Errorf("alice should be restored: %v", err)
	}
	detail, err := f.places.Get(f.ctx, p.ID)
	if err != nil {
		t.Fatalf("place should be restored: %v", err)
	}
	if detail.ReviewCount != 1 {
		t.Errorf("review should be restored, got %d", detail.ReviewCount)
	}
}

func TestIdentityService_Delete_NotFound(t *testing.T) {
	f := newFixture(t)
	if err := f.identity.Delete(f.ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestIdentityService_EnsureAdmin(t *testing.T) {
	f := newFixture(t)

	first := f.admin(t)
	if !first.IsAdmin {
		t.Fatalf("expected admin claims")
	}
	second := f.admin(t)
	if second.SubjectID != first.SubjectID {
		t.Fatalf("expected idempotent bootstrap, got %s and %s", first.SubjectID, second.SubjectID)
	}

	users, err := f.identity.List(f.ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}
}

func TestIdentityService_EnsureAdmin_PromotesExistingUser(t *testing.T) {
	f := newFixture(t)
	u, err := f.identity.Register(f.ctx, ports.RegisterInput{
		FirstName: "Admin", LastName: "User", Email: "admin@example.com",
		Username: "root", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	admin := f.admin(t)
	if admin.SubjectID != u.ID || !admin.IsAdmin {
		t.Fatalf("expected existing user promoted, got %+v", admin)
	}
}
