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

	"dexrank/internal/user/models"
)

const uniqueViolation = "23505"

// PostgresStore persists users in PostgreSQL. The same implementation serves
// pooled and transactional callers through the DBTX seam.
type PostgresStore struct {
	db database.DBTX
}

// NewPostgres constructs a store over a pooled connection handle.
func NewPostgres(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// NewPostgresTx constructs a store scoped to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore { return &PostgresStore{db: tx} }

const userColumns = `id, email, display_name, password_hash, ranking_ids, box_ids, highest_ranked_count, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID), user.Email, user.DisplayName, user.PasswordHash,
		pq.Array(rankingIDStrings(user.RankingIDs)), pq.Array(boxIDStrings(user.BoxIDs)),
		user.HighestRankedCount, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresStore) AppendRanking(ctx context.Context, userID id.UserID, rankingID id.RankingID) error {
	return s.mutateRefs(ctx,
		`UPDATE users SET ranking_ids = array_append(ranking_ids, $2), updated_at = NOW() WHERE id = $1`,
		uuid.UUID(userID), uuid.UUID(rankingID))
}

func (s *PostgresStore) RemoveRanking(ctx context.Context, userID id.UserID, rankingID id.RankingID) error {
	return s.mutateRefs(ctx,
		`UPDATE users SET ranking_ids = array_remove(ranking_ids, $2), updated_at = NOW() WHERE id = $1`,
		uuid.UUID(userID), uuid.UUID(rankingID))
}

func (s *PostgresStore) AppendBox(ctx context.Context, userID id.UserID, boxID id.BoxID) error {
	return s.mutateRefs(ctx,
		`UPDATE users SET box_ids = array_append(box_ids, $2), updated_at = NOW() WHERE id = $1`,
		uuid.UUID(userID), uuid.UUID(boxID))
}

func (s *PostgresStore) RemoveBox(ctx context.Context, userID id.UserID, boxID id.BoxID) error {
	return s.mutateRefs(ctx,
		`UPDATE users SET box_ids = array_remove(box_ids, $2), updated_at = NOW() WHERE id = $1`,
		uuid.UUID(userID), uuid.UUID(boxID))
}

func (s *PostgresStore) SetHighestRankedCount(ctx context.Context, userID id.UserID, count int) error {
	return s.mutateRefs(ctx,
		`UPDATE users SET highest_ranked_count = $2, updated_at = NOW() WHERE id = $1`,
		uuid.UUID(userID), count)
}

func (s *PostgresStore) ListByHighestRanked(ctx context.Context, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY highest_ranked_count DESC, created_at ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) mutateRefs(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u           models.User
		rawID       uuid.UUID
		rankingRefs pq.StringArray
		boxRefs     pq.StringArray
	)
	err := row.Scan(&rawID, &u.Email, &u.DisplayName, &u.PasswordHash,
		&rankingRefs, &boxRefs, &u.HighestRankedCount, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(rawID)
	if u.RankingIDs, err = parseRankingIDs(rankingRefs); err != nil {
		return nil, err
	}
	if u.BoxIDs, err = parseBoxIDs(boxRefs); err != nil {
		return nil, err
	}
	return &u, nil
}

func rankingIDStrings(ids []id.RankingID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}

func boxIDStrings(ids []id.BoxID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}

func parseRankingIDs(in []string) ([]id.RankingID, error) {
	out := make([]id.RankingID, 0, len(in))
	for _, s := range in {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse ranking ref %q: %w", s, err)
		}
		out = append(out, id.RankingID(u))
	}
	return out, nil
}

func parseBoxIDs(in []string) ([]id.BoxID, error) {
	out := make([]id.BoxID, 0, len(in))
	for _, s := range in {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse box ref %q: %w", s, err)
		}
		out = append(out, id.BoxID(u))
	}
	return out, nil
}
