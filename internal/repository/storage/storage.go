package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound covers both "does not exist" and "exists but belongs to
// someone else": every query here is scoped to the owner, so the two are
// indistinguishable on purpose.
var ErrNotFound = errors.New("not found")

// ReorderError rejects a bulk reorder whose id list is not a permutation of
// the scope's current members. Nothing is written when it is returned.
type ReorderError struct {
	BadIDs     []int64 // submitted ids outside the scope
	MissingIDs []int64 // scope members absent from the submission
}

func (e *ReorderError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.BadIDs) > 0 {
		parts = append(parts, "invalid ids: "+joinIDs(e.BadIDs))
	}
	if len(e.MissingIDs) > 0 {
		parts = append(parts, "missing ids: "+joinIDs(e.MissingIDs))
	}
	return "reorder: " + strings.Join(parts, "; ")
}

func joinIDs(ids []int64) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(s, ", ")
}

// checkPermutation compares the submitted ordering against the scope's
// current member ids and builds the ReorderError when they differ.
func checkPermutation(submitted, current []int64) *ReorderError {
	cur := make(map[int64]bool, len(current))
	for _, id := range current {
		cur[id] = true
	}

	e := &ReorderError{}
	seen := make(map[int64]bool, len(submitted))
	for _, id := range submitted {
		if !cur[id] || seen[id] {
			e.BadIDs = append(e.BadIDs, id)
		}
		seen[id] = true
	}
	for _, id := range current {
		if !seen[id] {
			e.MissingIDs = append(e.MissingIDs, id)
		}
	}

	if len(e.BadIDs) == 0 && len(e.MissingIDs) == 0 {
		return nil
	}
	sort.Slice(e.BadIDs, func(i, j int) bool { return e.BadIDs[i] < e.BadIDs[j] })
	sort.Slice(e.MissingIDs, func(i, j int) bool { return e.MissingIDs[i] < e.MissingIDs[j] })
	return e
}

type Storage struct {
	dbpool *pgxpool.Pool
}

func New(ctx context.Context, databaseDSN string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &Storage{dbpool: pool}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.dbpool.Ping(ctx)
}

func (s *Storage) Close() {
	s.dbpool.Close()
}
