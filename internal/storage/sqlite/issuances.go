package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/google/uuid"
)

// TokenIssuance is one attempt to mint a conversation credential.
// The credential itself is never stored.
type TokenIssuance struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ClientAddr   string    `json:"client_addr"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// TokenIssuanceStorage records credential issuance attempts
type TokenIssuanceStorage struct {
	db     *sql.DB
	logger *logger.Logger
	now    func() time.Time
}

// NewTokenIssuanceStorage creates the token_issuances table if needed
func NewTokenIssuanceStorage(db *sql.DB, logger *logger.Logger) (*TokenIssuanceStorage, error) {
	s := &TokenIssuanceStorage{
		db:     db,
		logger: logger.Named("sqlite-issuance"),
		now:    time.Now,
	}
	if err := s.initDB(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TokenIssuanceStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS token_issuances (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			client_addr TEXT,
			success INTEGER NOT NULL,
			error_message TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create token_issuances table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_token_issuances_created_at ON token_issuances(created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create created_at index: %w", err)
	}
	return nil
}

// Record stores one issuance attempt. A nil issueErr marks it successful.
func (s *TokenIssuanceStorage) Record(ctx context.Context, clientAddr string, issueErr error) (*TokenIssuance, error) {
	rec := &TokenIssuance{
		ID:         uuid.NewString(),
		CreatedAt:  s.now().UTC().Truncate(time.Second),
		ClientAddr: clientAddr,
		Success:    issueErr == nil,
	}
	if issueErr != nil {
		rec.ErrorMessage = issueErr.Error()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO token_issuances (id, created_at, client_addr, success, error_message) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.ClientAddr, rec.Success, rec.ErrorMessage,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert token issuance: %w", err)
	}

	s.logger.Debug("Recorded token issuance",
		logger.String("id", rec.ID),
		logger.String("client", clientAddr),
		logger.Bool("success", rec.Success))
	return rec, nil
}

// List returns issuances newest first
func (s *TokenIssuanceStorage) List(ctx context.Context, limit, offset int) ([]TokenIssuance, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, client_addr, success, error_message FROM token_issuances
		ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query token issuances: %w", err)
	}
	defer rows.Close()

	var out []TokenIssuance
	for rows.Next() {
		var (
			rec        TokenIssuance
			createdAt  string
			clientAddr sql.NullString
			errMsg     sql.NullString
		)
		if err := rows.Scan(&rec.ID, &createdAt, &clientAddr, &rec.Success, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan token issuance: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		rec.ClientAddr = clientAddr.String
		rec.ErrorMessage = errMsg.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate token issuances: %w", err)
	}
	return out, nil
}

// Count returns the total and successful issuance counts
func (s *TokenIssuanceStorage) Count(ctx context.Context) (total, succeeded int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(success), 0) FROM token_issuances`).Scan(&total, &succeeded)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count token issuances: %w", err)
	}
	return total, succeeded, nil
}
