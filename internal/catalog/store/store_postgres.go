package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"dexrank/internal/platform/database"
	id "dexrank/pkg/domain"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/catalog/models"
)

// PostgresStore reads the pokemon table.
type PostgresStore struct {
	db database.DBTX
}

func NewPostgres(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.Pokemon, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dex_number, name FROM pokemon ORDER BY dex_number`)
	if err != nil {
		return nil, fmt.Errorf("list pokemon: %w", err)
	}
	defer rows.Close()

	var out []*models.Pokemon
	for rows.Next() {
		var (
			p     models.Pokemon
			rawID uuid.UUID
		)
		if err := rows.Scan(&rawID, &p.DexNumber, &p.Name); err != nil {
			return nil, fmt.Errorf("scan pokemon: %w", err)
		}
		p.ID = id.PokemonID(rawID)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, pokemonID id.PokemonID) (*models.Pokemon, error) {
	var (
		p     models.Pokemon
		rawID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, dex_number, name FROM pokemon WHERE id = $1`,
		uuid.UUID(pokemonID)).Scan(&rawID, &p.DexNumber, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find pokemon: %w", err)
	}
	p.ID = id.PokemonID(rawID)
	return &p, nil
}

// Seed inserts catalog entries if absent. Boot-time convenience; conflicts on
// dex number or name are ignored so restarts are idempotent.
func (s *PostgresStore) Seed(ctx context.Context, entries []*models.Pokemon) error {
	for _, p := range entries {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO pokemon (id, dex_number, name) VALUES ($1, $2, $3)
			 ON CONFLICT DO NOTHING`,
			uuid.UUID(p.ID), p.DexNumber, p.Name)
		if err != nil {
			return fmt.Errorf("seed pokemon %q: %w", p.Name, err)
		}
	}
	return nil
}
