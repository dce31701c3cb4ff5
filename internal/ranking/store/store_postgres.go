package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"dexrank/internal/platform/database"
	id "dexrank/pkg/domain"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/ranking/models"
)

const uniqueViolation = "23505"

// PostgresStore persists rankings in PostgreSQL. Zones are stored as JSONB;
// the Pokémon sequence is a uuid[] whose array order is the rank order.
type PostgresStore struct {
	db database.DBTX
}

// NewPostgres constructs a store over a pooled connection handle.
func NewPostgres(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// NewPostgresTx constructs a store scoped to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore { return &PostgresStore{db: tx} }

const rankingColumns = `id, owner_id, title, pokemon, zones, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, ranking *models.Ranking) error {
	zones, err := json.Marshal(ranking.Zones)
	if err != nil {
		return fmt.Errorf("encode zones: %w", err)
	}
	query := `
		INSERT INTO rankings (` + rankingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(ranking.ID), uuid.UUID(ranking.OwnerID), ranking.Title,
		pq.Array(pokemonIDStrings(ranking.Pokemon)), zones,
		ranking.CreatedAt, ranking.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create ranking: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, rankingID id.RankingID) (*models.Ranking, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+rankingColumns+` FROM rankings WHERE id = $1`, uuid.UUID(rankingID))
	return scanRanking(row)
}

func (s *PostgresStore) FindByOwnerAndTitle(ctx context.Context, ownerID id.UserID, title string) (*models.Ranking, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+rankingColumns+` FROM rankings WHERE owner_id = $1 AND title = $2`,
		uuid.UUID(ownerID), title)
	return scanRanking(row)
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Ranking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rankingColumns+` FROM rankings WHERE owner_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	defer rows.Close()

	var out []*models.Ranking
	for rows.Next() {
		r, err := scanRanking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountsByOwner(ctx context.Context, ownerID id.UserID) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cardinality(pokemon) FROM rankings WHERE owner_id = $1`,
		uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("count rankings: %w", err)
	}
	defer rows.Close()

	var counts []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan ranking count: %w", err)
		}
		counts = append(counts, n)
	}
	return counts, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, ranking *models.Ranking) error {
	zones, err := json.Marshal(ranking.Zones)
	if err != nil {
		return fmt.Errorf("encode zones: %w", err)
	}
	query := `
		UPDATE rankings
		SET title = $2, pokemon = $3, zones = $4, updated_at = $5
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(ranking.ID), ranking.Title,
		pq.Array(pokemonIDStrings(ranking.Pokemon)), zones, ranking.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update ranking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ranking: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, rankingID id.RankingID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rankings WHERE id = $1`, uuid.UUID(rankingID))
	if err != nil {
		return fmt.Errorf("delete ranking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ranking: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRanking(row rowScanner) (*models.Ranking, error) {
	var (
		r        models.Ranking
		rawID    uuid.UUID
		rawOwner uuid.UUID
		pokemon  pq.StringArray
		zones    []byte
	)
	err := row.Scan(&rawID, &rawOwner, &r.Title, &pokemon, &zones, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan ranking: %w", err)
	}
	r.ID = id.RankingID(rawID)
	r.OwnerID = id.UserID(rawOwner)
	if r.Pokemon, err = parsePokemonIDs(pokemon); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(zones, &r.Zones); err != nil {
		return nil, fmt.Errorf("decode zones: %w", err)
	}
	return &r, nil
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
