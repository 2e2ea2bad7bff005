package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hbnb/marketplace/internal/core/domain"
)

type AmenityRepository struct {
	s *Store
}

const amenityColumns = `id, name, created_at, updated_at`

type amenityRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r amenityRow) toDomain() *domain.Amenity {
	return &domain.Amenity{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

func (r *AmenityRepository) Create(ctx context.Context, a *domain.Amenity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.s.q.Exec(ctx,
		`INSERT INTO amenities (`+amenityColumns+`) VALUES ($1, $2, $3, $4)`,
		a.ID, a.Name, a.CreatedAt, a.UpdatedAt,
	)
	return mapErr("insert amenity", err)
}

func (r *AmenityRepository) Update(ctx context.Context, a *domain.Amenity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.s.q.Exec(ctx, `UPDATE amenities SET name = $2, updated_at = $3 WHERE id = $1`, a.ID, a.Name, a.UpdatedAt)
	if err != nil {
		return mapErr("update amenity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAmenityNotFound
	}
	return nil
}

func (r *AmenityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.s.q.Exec(ctx, `DELETE FROM amenities WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete amenity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAmenityNotFound
	}
	return nil
}

func (r *AmenityRepository) FindByID(ctx context.Context, id string) (*domain.Amenity, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *AmenityRepository) FindByName(ctx context.Context, name string) (*domain.Amenity, error) {
	return r.findOne(ctx, `WHERE name = $1`, name)
}

func (r *AmenityRepository) findOne(ctx context.Context, where string, arg any) (*domain.Amenity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.s.q.Query(ctx, `SELECT `+amenityColumns+` FROM amenities `+where, arg)
	if err != nil {
		return nil, mapErr("find amenity", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[amenityRow])
	if err != nil {
		return nil, notFound("find amenity", err, domain.ErrAmenityNotFound)
	}
	return row.toDomain(), nil
}

func (r *AmenityRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Amenity, error) {
	if len(ids) == 0 {
		return []*domain.Amenity{}, nil
	}
	return r.find(ctx, `WHERE id = ANY($1)`, ids)
}

func (r *AmenityRepository) List(ctx context.Context) ([]*domain.Amenity, error) {
	return r.find(ctx, ``)
}

func (r *AmenityRepository) find(ctx context.Context, where string, args ...any) ([]*domain.Amenity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.s.q.Query(ctx, `SELECT `+amenityColumns+` FROM amenities `+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, mapErr("find amenities", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[amenityRow])
	if err != nil {
		return nil, mapErr("find amenities", err)
	}

	out := make([]*domain.Amenity, 0, len(found))
	for _, row := range found {
		out = append(out, row.toDomain())
	}
	return out, nil
}
