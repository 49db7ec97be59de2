package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kkkatsube/picc/internal/entities"
)

const canvasColumns = `id, user_id, name, memo, width, height, created_at, updated_at`

// CanvasUpdate is a partial update: nil fields keep their stored value.
type CanvasUpdate struct {
	Name   *string
	Memo   *string
	Width  *int
	Height *int
}

func scanCanvas(row pgx.Row) (entities.Canvas, error) {
	var c entities.Canvas
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Memo, &c.Width, &c.Height,
		&c.CreatedTimestamp, &c.UpdatedTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Canvas{}, ErrNotFound
	}
	return c, err
}

func (s *Storage) ListCanvases(ctx context.Context, userID int64) ([]entities.Canvas, error) {
	rows, err := s.dbpool.Query(ctx,
		`SELECT `+canvasColumns+` FROM canvases
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	canvases := []entities.Canvas{}
	for rows.Next() {
		c, err := scanCanvas(rows)
		if err != nil {
			return nil, err
		}
		canvases = append(canvases, c)
	}
	return canvases, rows.Err()
}

func (s *Storage) CreateCanvas(ctx context.Context, userID int64, u CanvasUpdate) (entities.Canvas, error) {
	return scanCanvas(s.dbpool.QueryRow(ctx,
		`INSERT INTO canvases (user_id, name, memo, width, height)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+canvasColumns,
		userID, u.Name, u.Memo, u.Width, u.Height,
	))
}

func (s *Storage) GetCanvas(ctx context.Context, userID, id int64) (entities.Canvas, error) {
	return scanCanvas(s.dbpool.QueryRow(ctx,
		`SELECT `+canvasColumns+` FROM canvases WHERE user_id = $1 AND id = $2`,
		userID, id,
	))
}

func (s *Storage) UpdateCanvas(ctx context.Context, userID, id int64, u CanvasUpdate) (entities.Canvas, error) {
	set := []string{"updated_at = now()"}
	args := []any{userID, id}

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Memo != nil {
		add("memo", *u.Memo)
	}
	if u.Width != nil {
		add("width", *u.Width)
	}
	if u.Height != nil {
		add("height", *u.Height)
	}

	return scanCanvas(s.dbpool.QueryRow(ctx,
		`UPDATE canvases SET `+strings.Join(set, ", ")+`
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+canvasColumns,
		args...,
	))
}

func (s *Storage) DeleteCanvas(ctx context.Context, userID, id int64) error {
	tag, err := s.dbpool.Exec(ctx,
		`DELETE FROM canvases WHERE user_id = $1 AND id = $2`,
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
