package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hbnb/marketplace/internal/core/domain"
)

type ReviewRepository struct {
	s *Store
}

const reviewColumns = `id, text, rating, user_id, place_id, created_at, updated_at`

type reviewRow struct {
	ID        string    `db:"id"`
	Text      string    `db:"text"`
	Rating    int       `db:"rating"`
	UserID    string    `db:"user_id"`
	PlaceID   string    `db:"place_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r reviewRow) toDomain() *domain.Review {
	return &domain.Review{
		ID:        r.ID,
		Text:      r.Text,
		Rating:    r.Rating,
		AuthorID:  r.UserID,
		PlaceID:   r.PlaceID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.s.q.Exec(ctx,
		`INSERT INTO reviews (`+reviewColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rv.ID, rv.Text, rv.Rating, rv.AuthorID, rv.PlaceID, rv.CreatedAt, rv.UpdatedAt,
	)
	return mapErr("insert review", err)
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.s.q.Exec(ctx,
		`UPDATE reviews SET text = $2, rating = $3, updated_at = $4 WHERE id = $1`,
		rv.ID, rv.Text, rv.Rating, rv.UpdatedAt,
	)
	if err != nil {
		return mapErr("update review", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.s.q.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete review", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.s.q.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	if err != nil {
		return nil, mapErr("find review", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[reviewRow])
	if err != nil {
		return nil, notFound("find review", err, domain.ErrReviewNotFound)
	}
	return row.toDomain(), nil
}

func (r *ReviewRepository) List(ctx context.Context) ([]*domain.Review, error) {
	return r.find(ctx, ``)
}

func (r *ReviewRepository) ListByPlace(ctx context.Context, placeID string) ([]*domain.Review, error) {
	return r.find(ctx, `WHERE place_id = $1`, placeID)
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Review, error) {
	return r.find(ctx, `WHERE user_id = $1`, authorID)
}

func (r *ReviewRepository) DeleteByPlace(ctx context.Context, placeID string) (int64, error) {
	return r.deleteWhere(ctx, `place_id = $1`, placeID)
}

func (r *ReviewRepository) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	return r.deleteWhere(ctx, `user_id = $1`, authorID)
}

func (r *ReviewRepository) deleteWhere(ctx context.Context, cond string, arg any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.s.q.Exec(ctx, `DELETE FROM reviews WHERE `+cond, arg)
	if err != nil {
		return 0, mapErr("delete reviews", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ReviewRepository) find(ctx context.Context, where string, args ...any) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.s.q.Query(ctx, `SELECT `+reviewColumns+` FROM reviews `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, mapErr("find reviews", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[reviewRow])
	if err != nil {
		return nil, mapErr("find reviews", err)
	}

	out := make([]*domain.Review, 0, len(found))
	for _, row := range found {
		out = append(out, row.toDomain())
	}
	return out, nil
}
