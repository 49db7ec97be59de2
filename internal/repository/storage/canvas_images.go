package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kkkatsube/picc/internal/entities"
)

// left/right/top/bottom are reserved words in postgres, hence the quoting.
const canvasImageColumns = `id, canvas_id, uri, x, y, width, height,
	"left", "right", "top", "bottom", size, created_at, updated_at`

// CanvasImageCreate carries the full initial state of a placed image; the
// handler fills the defaults (probe results, drop scale, zero crops) before
// it gets here.
type CanvasImageCreate struct {
	URI    string
	X      int
	Y      int
	Width  int
	Height int
	Size   float64
	Left   int
	Right  int
	Top    int
	Bottom int
}

// CanvasImageUpdate is a partial update: nil fields keep their stored value.
type CanvasImageUpdate struct {
	URI    *string
	X      *int
	Y      *int
	Width  *int
	Height *int
	Left   *int
	Right  *int
	Top    *int
	Bottom *int
	Size   *float64
}

func scanCanvasImage(row pgx.Row) (entities.CanvasImage, error) {
	var img entities.CanvasImage
	err := row.Scan(&img.ID, &img.CanvasID, &img.URI, &img.X, &img.Y,
		&img.Width, &img.Height, &img.Left, &img.Right, &img.Top, &img.Bottom,
		&img.Size, &img.CreatedTimestamp, &img.UpdatedTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.CanvasImage{}, ErrNotFound
	}
	return img, err
}

func (s *Storage) ListCanvasImages(ctx context.Context, canvasID int64) ([]entities.CanvasImage, error) {
	rows, err := s.dbpool.Query(ctx,
		`SELECT `+canvasImageColumns+` FROM canvas_images
		 WHERE canvas_id = $1 ORDER BY created_at DESC, id DESC`,
		canvasID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []entities.CanvasImage{}
	for rows.Next() {
		img, err := scanCanvasImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *Storage) CreateCanvasImage(ctx context.Context, canvasID int64, c CanvasImageCreate) (entities.CanvasImage, error) {
	return scanCanvasImage(s.dbpool.QueryRow(ctx,
		`INSERT INTO canvas_images
		    (canvas_id, uri, x, y, width, height, "left", "right", "top", "bottom", size)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+canvasImageColumns,
		canvasID, c.URI, c.X, c.Y, c.Width, c.Height, c.Left, c.Right, c.Top, c.Bottom, c.Size,
	))
}

func (s *Storage) GetCanvasImage(ctx context.Context, canvasID, id int64) (entities.CanvasImage, error) {
	return scanCanvasImage(s.dbpool.QueryRow(ctx,
		`SELECT `+canvasImageColumns+` FROM canvas_images
		 WHERE canvas_id = $1 AND id = $2`,
		canvasID, id,
	))
}

func (s *Storage) UpdateCanvasImage(ctx context.Context, canvasID, id int64, u CanvasImageUpdate) (entities.CanvasImage, error) {
	set := []string{"updated_at = now()"}
	args := []any{canvasID, id}

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.URI != nil {
		add("uri", *u.URI)
	}
	if u.X != nil {
		add("x", *u.X)
	}
	if u.Y != nil {
		add("y", *u.Y)
	}
	if u.Width != nil {
		add("width", *u.Width)
	}
	if u.Height != nil {
		add("height", *u.Height)
	}
	if u.Left != nil {
		add(`"left"`, *u.Left)
	}
	if u.Right != nil {
		add(`"right"`, *u.Right)
	}
	if u.Top != nil {
		add(`"top"`, *u.Top)
	}
	if u.Bottom != nil {
		add(`"bottom"`, *u.Bottom)
	}
	if u.Size != nil {
		add("size", *u.Size)
	}

	return scanCanvasImage(s.dbpool.QueryRow(ctx,
		`UPDATE canvas_images SET `+strings.Join(set, ", ")+`
		 WHERE canvas_id = $1 AND id = $2
		 RETURNING `+canvasImageColumns,
		args...,
	))
}

func (s *Storage) DeleteCanvasImage(ctx context.Context, canvasID, id int64) error {
	tag, err := s.dbpool.Exec(ctx,
		`DELETE FROM canvas_images WHERE canvas_id = $1 AND id = $2`,
		canvasID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
