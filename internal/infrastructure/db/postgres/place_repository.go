package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// PlaceRepository stores places and their place_amenities rows. Writes that
// touch both tables run in one transaction.
type PlaceRepository struct {
	s *Store
}

const placeColumns = `id, title, description, price, latitude, longitude, owner_id, created_at, updated_at`

type placeRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Price       float64   `db:"price"`
	Latitude    float64   `db:"latitude"`
	Longitude   float64   `db:"longitude"`
	OwnerID     string    `db:"owner_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r placeRow) toDomain(amenityIDs []string) *domain.Place {
	if amenityIDs == nil {
		amenityIDs = []string{}
	}
	return &domain.Place{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		OwnerID:     r.OwnerID,
		AmenityIDs:  amenityIDs,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (r *PlaceRepository) Create(ctx context.Context, p *domain.Place) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.s.within(ctx, func(q querier) error {
		if err := claimLocation(ctx, q, p); err != nil {
			return err
		}
		_, err := q.Exec(ctx,
			`INSERT INTO places (`+placeColumns+`, location_key) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.Title, p.Description, p.Price, p.Latitude, p.Longitude, p.OwnerID, p.CreatedAt, p.UpdatedAt,
			p.Coordinates().Key(),
		)
		if err != nil {
			return mapErr("insert place", err)
		}
		return insertLinks(ctx, q, p.ID, p.AmenityIDs)
	})
}

func (r *PlaceRepository) Update(ctx context.Context, p *domain.Place) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.s.within(ctx, func(q querier) error {
		if err := claimLocation(ctx, q, p); err != nil {
			return err
		}
		tag, err := q.Exec(ctx,
			`UPDATE places
			 SET title = $2, description = $3, price = $4, latitude = $5, longitude = $6,
			     location_key = $7, updated_at = $8
			 WHERE id = $1`,
			p.ID, p.Title, p.Description, p.Price, p.Latitude, p.Longitude, p.Coordinates().Key(), p.UpdatedAt,
		)
		if err != nil {
			return mapErr("update place", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrPlaceNotFound
		}
		if _, err := q.Exec(ctx, `DELETE FROM place_amenities WHERE place_id = $1`, p.ID); err != nil {
			return mapErr("clear place amenities", err)
		}
		return insertLinks(ctx, q, p.ID, p.AmenityIDs)
	})
}

// locationLockKey is the advisory lock serializing place location writes.
const locationLockKey int64 = 0x706c616365 // "place"

// claimLocation takes the location lock for the rest of the transaction and
// fails when another place lies within tolerance of p. The unique
// location_key only catches places in the same grid cell; neighbours across
// a cell boundary are caught here.
func claimLocation(ctx context.Context, q querier, p *domain.Place) error {
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, locationLockKey); err != nil {
		return mapErr("lock place location", err)
	}
	c := p.Coordinates()
	var taken bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM places
			WHERE id <> $1 AND latitude > $2 AND latitude < $3 AND longitude > $4 AND longitude < $5
		)`,
		p.ID,
		c.Latitude-domain.LocationTolerance, c.Latitude+domain.LocationTolerance,
		c.Longitude-domain.LocationTolerance, c.Longitude+domain.LocationTolerance,
	).Scan(&taken)
	if err != nil {
		return mapErr("check place location", err)
	}
	if taken {
		return domain.ErrLocationTaken
	}
	return nil
}

func insertLinks(ctx context.Context, q querier, placeID string, amenityIDs []string) error {
	for i, id := range amenityIDs {
		if _, err := q.Exec(ctx,
			`INSERT INTO place_amenities (place_id, amenity_id, position) VALUES ($1, $2, $3)`,
			placeID, id, i,
		); err != nil {
			return mapErr("insert place amenity", err)
		}
	}
	return nil
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.s.within(ctx, func(q querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM place_amenities WHERE place_id = $1`, id); err != nil {
			return mapErr("delete place amenities", err)
		}
		tag, err := q.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
		if err != nil {
			return mapErr("delete place", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrPlaceNotFound
		}
		return nil
	})
}

func (r *PlaceRepository) FindByID(ctx context.Context, id string) (*domain.Place, error) {
	places, err := r.find(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, domain.ErrPlaceNotFound
	}
	return places[0], nil
}

func (r *PlaceRepository) List(ctx context.Context) ([]*domain.Place, error) {
	return r.find(ctx, ``)
}

func (r *PlaceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Place, error) {
	return r.find(ctx, `WHERE owner_id = $1`, ownerID)
}

func (r *PlaceRepository) FindNear(ctx context.Context, c domain.Coordinates) ([]*domain.Place, error) {
	return r.find(ctx,
		`WHERE latitude > $1 AND latitude < $2 AND longitude > $3 AND longitude < $4`,
		c.Latitude-domain.LocationTolerance, c.Latitude+domain.LocationTolerance,
		c.Longitude-domain.LocationTolerance, c.Longitude+domain.LocationTolerance,
	)
}

func (r *PlaceRepository) RemoveAmenity(ctx context.Context, amenityID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.s.q.Exec(ctx, `DELETE FROM place_amenities WHERE amenity_id = $1`, amenityID)
	return mapErr("remove amenity links", err)
}

func (r *PlaceRepository) find(ctx context.Context, where string, args ...any) ([]*domain.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.s.q.Query(ctx, `SELECT `+placeColumns+` FROM places `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, mapErr("find places", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[placeRow])
	if err != nil {
		return nil, mapErr("find places", err)
	}

	ids := make([]string, 0, len(found))
	for _, row := range found {
		ids = append(ids, row.ID)
	}
	links, err := r.amenityIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Place, 0, len(found))
	for _, row := range found {
		out = append(out, row.toDomain(links[row.ID]))
	}
	return out, nil
}

// amenityIDs loads the association rows of placeIDs, grouped by place in
// insertion order.
func (r *PlaceRepository) amenityIDs(ctx context.Context, placeIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}
	rows, err := r.s.q.Query(ctx,
		`SELECT place_id, amenity_id FROM place_amenities WHERE place_id = ANY($1) ORDER BY place_id, position`,
		placeIDs,
	)
	if err != nil {
		return nil, mapErr("find place amenities", err)
	}
	defer rows.Close()

	for rows.Next() {
		var placeID, amenityID string
		if err := rows.Scan(&placeID, &amenityID); err != nil {
			return nil, mapErr("scan place amenity", err)
		}
		out[placeID] = append(out[placeID], amenityID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("find place amenities", err)
	}
	return out, nil
}
