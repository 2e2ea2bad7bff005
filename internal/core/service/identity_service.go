package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/metrics"
)

type identityService struct {
	store  ports.Store
	hasher ports.PasswordHasher
	audit  auditor
	log    zerolog.Logger
}

// NewIdentityService returns an IdentityService backed by store.
func NewIdentityService(store ports.Store, hasher ports.PasswordHasher, audit ports.AuditPublisher, log zerolog.Logger) ports.IdentityService {
	return &identityService{store: store, hasher: hasher, audit: auditor{audit}, log: log}
}

// Register validates input, checks email and username uniqueness, and stores
// the user with a hashed password.
func (s *identityService) Register(ctx context.Context, in ports.RegisterInput) (*ports.UserView, error) {
	role := domain.RoleTraveler
	if strings.TrimSpace(in.Role) != "" {
		r, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	fields := domain.UserFields{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Username:  in.Username,
		Role:      role,
	}
	if err := validateProfile(fields); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, "", domain.NormalizeEmail(in.Email), strings.TrimSpace(in.Username)); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	user, err := domain.NewUser(newID(), fields, hash, now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, domain.StorageFailure("create user", err)
	}

	metrics.UsersRegisteredTotal.WithLabelValues(string(user.Role)).Inc()
	s.audit.record(ctx, domain.AuditUserRegistered, user.ID, map[string]string{"role": string(user.Role)})
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")

	return toUserView(user), nil
}

// validateProfile runs the field checks of domain.NewUser before the
// password is hashed.
func validateProfile(f domain.UserFields) error {
	if err := domain.ValidateName("first_name", f.FirstName); err != nil {
		return err
	}
	if err := domain.ValidateName("last_name", f.LastName); err != nil {
		return err
	}
	if err := domain.ValidateEmail(domain.NormalizeEmail(f.Email)); err != nil {
		return err
	}
	if strings.TrimSpace(f.Username) == "" {
		return domain.Invalid("username is required")
	}
	return nil
}

// checkUnique fails when email or username belongs to a user other than
// selfID. The store's unique indexes remain the final authority.
func (s *identityService) checkUnique(ctx context.Context, selfID, email, username string) error {
	if email != "" {
		existing, err := s.store.Users().FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			return domain.ErrEmailTaken
		case err != nil && !isNotFound(err):
			return domain.StorageFailure("find user by email", err)
		}
	}
	if username != "" {
		existing, err := s.store.Users().FindByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != selfID:
			return domain.ErrUsernameTaken
		case err != nil && !isNotFound(err):
			return domain.StorageFailure("find user by username", err)
		}
	}
	return nil
}

// Authenticate resolves identifier as an email first, then as a username,
// and verifies password against the stored hash.
func (s *identityService) Authenticate(ctx context.Context, identifier, password string) (domain.Claims, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return domain.Claims{}, domain.ErrInvalidCredentials
	}

	user, err := s.store.Users().FindByEmail(ctx, domain.NormalizeEmail(identifier))
	if isNotFound(err) {
		user, err = s.store.Users().FindByUsername(ctx, identifier)
	}
	if isNotFound(err) {
		return domain.Claims{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Claims{}, domain.StorageFailure("find user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return domain.Claims{}, domain.ErrInvalidCredentials
	}
	return domain.ClaimsFor(user), nil
}

func (s *identityService) Get(ctx context.Context, id string) (*ports.UserView, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("find user", err)
	}
	return toUserView(user), nil
}

func (s *identityService) List(ctx context.Context) ([]ports.UserView, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, domain.StorageFailure("list users", err)
	}
	out := make([]ports.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, *toUserView(u))
	}
	return out, nil
}

// Update applies the non-nil fields of in. Changed fields are re-validated
// and a new password is re-hashed.
func (s *identityService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*ports.UserView, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, domain.StorageFailure("find user", err)
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		user.Email = domain.NormalizeEmail(*in.Email)
	}
	if in.Username != nil {
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if in.Password != nil {
		if err := domain.ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	var email, username string
	if in.Email != nil {
		email = user.Email
	}
	if in.Username != nil {
		username = user.Username
	}
	if err := s.checkUnique(ctx, user.ID, email, username); err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = now()

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, domain.StorageFailure("update user", err)
	}

	s.audit.record(ctx, domain.AuditUserUpdated, user.ID, nil)
	s.log.Info().Str("user_id", user.ID).Msg("user updated")
	return toUserView(user), nil
}

// Delete removes the user together with every place they own (and each
// place's reviews and amenity links) and every review they wrote, in one
// atomic unit.
func (s *identityService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Users().FindByID(ctx, id); err != nil {
		return domain.StorageFailure("find user", err)
	}

	start := time.Now()
	var placesDeleted, reviewsDeleted int64
	err := s.store.Atomic(ctx, func(ctx context.Context, tx ports.Store) error {
		// Transactions may be retried.
		placesDeleted, reviewsDeleted = 0, 0
		places, err := tx.Places().ListByOwner(ctx, id)
		if err != nil {
			return domain.CascadeFailure("list owned places", err)
		}
		for _, p := range places {
			n, err := tx.Reviews().DeleteByPlace(ctx, p.ID)
			if err != nil {
				return domain.CascadeFailure("delete place reviews", err)
			}
			reviewsDeleted += n
			if err := tx.Places().Delete(ctx, p.ID); err != nil {
				return domain.CascadeFailure("delete place", err)
			}
			placesDeleted++
		}
		n, err := tx.Reviews().DeleteByAuthor(ctx, id)
		if err != nil {
			return domain.CascadeFailure("delete authored reviews", err)
		}
		reviewsDeleted += n
		if err := tx.Users().Delete(ctx, id); err != nil {
			return domain.CascadeFailure("delete user", err)
		}
		return nil
	})
	if err != nil && !domain.IsDomainError(err) {
		err = domain.CascadeFailure("commit", err)
	}
	observeCascade(s.log, "user", id, start, err)
	if err != nil {
		return err
	}

	s.audit.record(ctx, domain.AuditUserDeleted, id, map[string]string{
		"places_deleted":  fmt.Sprint(placesDeleted),
		"reviews_deleted": fmt.Sprint(reviewsDeleted),
	})
	s.log.Info().
		Str("user_id", id).
		Int64("places_deleted", placesDeleted).
		Int64("reviews_deleted", reviewsDeleted).
		Msg("user deleted")
	return nil
}

// EnsureAdmin creates the configured administrator, or grants the flag to an
// existing account with the same email. It is safe to call on every start.
func (s *identityService) EnsureAdmin(ctx context.Context, in ports.AdminInput) (*ports.UserView, error) {
	existing, err := s.store.Users().FindByEmail(ctx, domain.NormalizeEmail(in.Email))
	switch {
	case err == nil:
		if existing.IsAdmin {
			return toUserView(existing), nil
		}
		existing.IsAdmin = true
		existing.UpdatedAt = now()
		if err := s.store.Users().Update(ctx, existing); err != nil {
			return nil, domain.StorageFailure("promote admin", err)
		}
		s.log.Info().Str("user_id", existing.ID).Msg("existing user promoted to admin")
		return toUserView(existing), nil
	case !isNotFound(err):
		return nil, domain.StorageFailure("find admin", err)
	}

	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: hash password: %w", err)
	}
	admin, err := domain.NewUser(newID(), domain.UserFields{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Username:  in.Username,
		Role:      domain.RoleOwner,
	}, hash, now())
	if err != nil {
		return nil, err
	}
	admin.IsAdmin = true
	if err := s.store.Users().Create(ctx, admin); err != nil {
		return nil, domain.StorageFailure("create admin", err)
	}

	s.audit.record(ctx, domain.AuditUserRegistered, admin.ID, map[string]string{"is_admin": "true"})
	s.log.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("admin bootstrapped")
	return toUserView(admin), nil
}
