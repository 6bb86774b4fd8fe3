package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	consts "github.com/spounge-ai/brainstormity/internal/constants"
	"github.com/spounge-ai/brainstormity/internal/domain"
)

// PostgresCredentialStore keeps API key digests in the api_keys table.
type PostgresCredentialStore struct {
	db *pgxpool.Pool
}

var _ domain.CredentialStore = (*PostgresCredentialStore)(nil)

func NewPostgresCredentialStore(db *pgxpool.Pool) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

func (s *PostgresCredentialStore) Get(ctx context.Context, tokenHash string) (*domain.Credential, error) {
	var cred domain.Credential
	var clientName string

	err := s.db.QueryRow(ctx, consts.Queries[consts.StmtGetCredential], tokenHash).
		Scan(&cred.ID, &cred.TokenHash, &clientName, &cred.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	cred.ClientName = domain.ClientIdentity(clientName)
	return &cred, nil
}

func (s *PostgresCredentialStore) Create(ctx context.Context, cred *domain.Credential) error {
	tag, err := s.db.Exec(ctx, consts.Queries[consts.StmtInsertCredential],
		cred.ID, cred.TokenHash, cred.ClientName.String(), cred.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCredentialExists
	}
	return nil
}

func (s *PostgresCredentialStore) Delete(ctx context.Context, tokenHash string) error {
	if _, err := s.db.Exec(ctx, consts.Queries[consts.StmtDeleteCredential], tokenHash); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (s *PostgresCredentialStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, consts.Queries[consts.StmtCountCredentials]).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	return n, nil
}
