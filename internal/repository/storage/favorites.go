package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kkkatsube/picc/internal/entities"
	"github.com/kkkatsube/picc/internal/ordering"
)

const carouselColumns = `id, user_id, name, "order", created_at, updated_at`
const favoritesImageColumns = `id, carousel_id, image_url, "order", created_at, updated_at`

func scanCarousel(row pgx.Row) (entities.FavoritesCarousel, error) {
	var c entities.FavoritesCarousel
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Order,
		&c.CreatedTimestamp, &c.UpdatedTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.FavoritesCarousel{}, ErrNotFound
	}
	if c.Images == nil {
		c.Images = []entities.FavoritesImage{}
	}
	return c, err
}

func scanFavoritesImage(row pgx.Row) (entities.FavoritesImage, error) {
	var img entities.FavoritesImage
	err := row.Scan(&img.ID, &img.CarouselID, &img.ImageURL, &img.Order,
		&img.CreatedTimestamp, &img.UpdatedTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.FavoritesImage{}, ErrNotFound
	}
	return img, err
}

// ListCarousels returns the user's carousels by position, images embedded
// in carousel order.
func (s *Storage) ListCarousels(ctx context.Context, userID int64) ([]entities.FavoritesCarousel, error) {
	rows, err := s.dbpool.Query(ctx,
		`SELECT `+carouselColumns+` FROM favorites_carousels
		 WHERE user_id = $1 ORDER BY "order"`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	carousels := []entities.FavoritesCarousel{}
	index := map[int64]int{}
	for rows.Next() {
		c, err := scanCarousel(rows)
		if err != nil {
			return nil, err
		}
		index[c.ID] = len(carousels)
		carousels = append(carousels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	imgRows, err := s.dbpool.Query(ctx,
		`SELECT i.id, i.carousel_id, i.image_url, i."order", i.created_at, i.updated_at
		 FROM favorites_images i
		 JOIN favorites_carousels c ON c.id = i.carousel_id
		 WHERE c.user_id = $1
		 ORDER BY i.carousel_id, i."order"`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer imgRows.Close()

	for imgRows.Next() {
		img, err := scanFavoritesImage(imgRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[img.CarouselID]; ok {
			carousels[i].Images = append(carousels[i].Images, img)
		}
	}
	return carousels, imgRows.Err()
}

// CreateCarousel appends at max(order)+1 within the user's scope. The read
// and the insert share a transaction so the unique (user_id, "order") index
// cannot trip over a concurrent append.
func (s *Storage) CreateCarousel(ctx context.Context, userID int64, name string) (entities.FavoritesCarousel, error) {
	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return entities.FavoritesCarousel{}, err
	}
	defer tx.Rollback(ctx)

	var maxOrder *int
	err = tx.QueryRow(ctx,
		`SELECT MAX("order") FROM favorites_carousels WHERE user_id = $1`,
		userID,
	).Scan(&maxOrder)
	if err != nil {
		return entities.FavoritesCarousel{}, err
	}

	c, err := scanCarousel(tx.QueryRow(ctx,
		`INSERT INTO favorites_carousels (user_id, name, "order")
		 VALUES ($1, $2, $3)
		 RETURNING `+carouselColumns,
		userID, name, ordering.Next(maxOrder),
	))
	if err != nil {
		return entities.FavoritesCarousel{}, err
	}
	return c, tx.Commit(ctx)
}

// GetCarousel loads one carousel with its images.
func (s *Storage) GetCarousel(ctx context.Context, userID, id int64) (entities.FavoritesCarousel, error) {
	c, err := scanCarousel(s.dbpool.QueryRow(ctx,
		`SELECT `+carouselColumns+` FROM favorites_carousels
		 WHERE user_id = $1 AND id = $2`,
		userID, id,
	))
	if err != nil {
		return entities.FavoritesCarousel{}, err
	}

	c.Images, err = s.ListCarouselImages(ctx, c.ID)
	return c, err
}

func (s *Storage) UpdateCarousel(ctx context.Context, userID, id int64, name string) (entities.FavoritesCarousel, error) {
	return scanCarousel(s.dbpool.QueryRow(ctx,
		`UPDATE favorites_carousels SET name = $3, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+carouselColumns,
		userID, id, name,
	))
}

func (s *Storage) DeleteCarousel(ctx context.Context, userID, id int64) error {
	tag, err := s.dbpool.Exec(ctx,
		`DELETE FROM favorites_carousels WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderCarousels applies a full new ordering of the user's carousels in
// one transaction. Pass one parks every row on a negative temp order so the
// unique (user_id, "order") index never sees a mid-sequence collision; pass
// two writes the final 0..n-1.
func (s *Storage) ReorderCarousels(ctx context.Context, userID int64, ids []int64) error {
	current, err := s.scopeIDs(ctx,
		`SELECT id FROM favorites_carousels WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if rerr := checkPermutation(ids, current); rerr != nil {
		return rerr
	}

	return s.applyPlan(ctx, ordering.NewPlan(ids),
		`UPDATE favorites_carousels SET "order" = $3, updated_at = now()
		 WHERE user_id = $1 AND id = $2`,
		userID)
}

func (s *Storage) ListCarouselImages(ctx context.Context, carouselID int64) ([]entities.FavoritesImage, error) {
	rows, err := s.dbpool.Query(ctx,
		`SELECT `+favoritesImageColumns+` FROM favorites_images
		 WHERE carousel_id = $1 ORDER BY "order"`,
		carouselID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []entities.FavoritesImage{}
	for rows.Next() {
		img, err := scanFavoritesImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// CreateCarouselImage appends at max(order)+1 within the carousel. No
// unique index on this scope, so no transaction is needed around the read.
func (s *Storage) CreateCarouselImage(ctx context.Context, carouselID int64, imageURL string) (entities.FavoritesImage, error) {
	var maxOrder *int
	err := s.dbpool.QueryRow(ctx,
		`SELECT MAX("order") FROM favorites_images WHERE carousel_id = $1`,
		carouselID,
	).Scan(&maxOrder)
	if err != nil {
		return entities.FavoritesImage{}, err
	}

	return scanFavoritesImage(s.dbpool.QueryRow(ctx,
		`INSERT INTO favorites_images (carousel_id, image_url, "order")
		 VALUES ($1, $2, $3)
		 RETURNING `+favoritesImageColumns,
		carouselID, imageURL, ordering.Next(maxOrder),
	))
}

// DeleteFavoritesImage checks ownership through the carousel join; a
// foreign image is indistinguishable from a missing one.
func (s *Storage) DeleteFavoritesImage(ctx context.Context, userID, id int64) error {
	tag, err := s.dbpool.Exec(ctx,
		`DELETE FROM favorites_images i
		 USING favorites_carousels c
		 WHERE i.carousel_id = c.id AND c.user_id = $1 AND i.id = $2`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderCarouselImages renumbers a carousel's images with the same
// two-pass transaction as the carousels themselves.
func (s *Storage) ReorderCarouselImages(ctx context.Context, carouselID int64, ids []int64) error {
	current, err := s.scopeIDs(ctx,
		`SELECT id FROM favorites_images WHERE carousel_id = $1`, carouselID)
	if err != nil {
		return err
	}
	if rerr := checkPermutation(ids, current); rerr != nil {
		return rerr
	}

	return s.applyPlan(ctx, ordering.NewPlan(ids),
		`UPDATE favorites_images SET "order" = $3, updated_at = now()
		 WHERE carousel_id = $1 AND id = $2`,
		carouselID)
}

func (s *Storage) scopeIDs(ctx context.Context, query string, scopeID int64) ([]int64, error) {
	rows, err := s.dbpool.Query(ctx, query, scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Storage) applyPlan(ctx context.Context, plan ordering.Plan, updateSQL string, scopeID int64) error {
	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, pass := range [][]ordering.Step{plan.Temp, plan.Final} {
		for _, step := range pass {
			if _, err := tx.Exec(ctx, updateSQL, scopeID, step.ID, step.Order); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}
