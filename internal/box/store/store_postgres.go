package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"dexrank/internal/platform/database"
	id "dexrank/pkg/domain"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/box/models"
)

const uniqueViolation = "23505"

// PostgresStore persists boxes in PostgreSQL.
type PostgresStore struct {
	db database.DBTX
}

// NewPostgres constructs a store over a pooled connection handle.
func NewPostgres(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// NewPostgresTx constructs a store scoped to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore { return &PostgresStore{db: tx} }

const boxColumns = `id, owner_id, name, is_public, pokemon, favorite_count, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, box *models.Box) error {
	query := `
		INSERT INTO boxes (` + boxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(box.ID), uuid.UUID(box.OwnerID), box.Name, box.Public,
		pq.Array(pokemonIDStrings(box.Pokemon)), box.FavoriteCount,
		box.CreatedAt, box.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create box: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, boxID id.BoxID) (*models.Box, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+boxColumns+` FROM boxes WHERE id = $1`, uuid.UUID(boxID))
	return scanBox(row)
}

func (s *PostgresStore) FindByOwnerAndName(ctx context.Context, ownerID id.UserID, name string) (*models.Box, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+boxColumns+` FROM boxes WHERE owner_id = $1 AND name = $2`,
		uuid.UUID(ownerID), name)
	return scanBox(row)
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Box, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+boxColumns+` FROM boxes WHERE owner_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}
	defer rows.Close()

	var out []*models.Box
	for rows.Next() {
		b, err := scanBox(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update writes name, visibility and contents. The favorite counter is
// deliberately not part of the statement; it only moves through
// IncrementFavoriteCount.
func (s *PostgresStore) Update(ctx context.Context, box *models.Box) error {
	query := `
		UPDATE boxes
		SET name = $2, is_public = $3, pokemon = $4, updated_at = $5
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(box.ID), box.Name, box.Public,
		pq.Array(pokemonIDStrings(box.Pokemon)), box.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update box: %w", err)
	}
	return affectedOrNotFound(res, "update box")
}

func (s *PostgresStore) Delete(ctx context.Context, boxID id.BoxID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boxes WHERE id = $1`, uuid.UUID(boxID))
	if err != nil {
		return fmt.Errorf("delete box: %w", err)
	}
	return affectedOrNotFound(res, "delete box")
}

func (s *PostgresStore) IncrementFavoriteCount(ctx context.Context, boxID id.BoxID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE boxes SET favorite_count = favorite_count + 1, updated_at = NOW() WHERE id = $1`,
		uuid.UUID(boxID))
	if err != nil {
		return fmt.Errorf("increment favorite count: %w", err)
	}
	return affectedOrNotFound(res, "increment favorite count")
}

func affectedOrNotFound(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBox(row rowScanner) (*models.Box, error) {
	var (
		b        models.Box
		rawID    uuid.UUID
		rawOwner uuid.UUID
		pokemon  pq.StringArray
	)
	err := row.Scan(&rawID, &rawOwner, &b.Name, &b.Public, &pokemon,
		&b.FavoriteCount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan box: %w", err)
	}
	b.ID = id.BoxID(rawID)
	b.OwnerID = id.UserID(rawOwner)
	if b.Pokemon, err = parsePokemonIDs(pokemon); err != nil {
		return nil, err
	}
	return &b, nil
}

func pokemonIDStrings(ids []id.PokemonID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}

func parsePokemonIDs(in []string) ([]id.PokemonID, error) {
	out := make([]id.PokemonID, 0, len(in))
	for _, s := range in {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse pokemon ref %q: %w", s, err)
		}
		out = append(out, id.PokemonID(u))
	}
	return out, nil
}
