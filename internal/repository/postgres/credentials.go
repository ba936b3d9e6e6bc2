package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/examshare/examshare-client/internal/model"
)

var _ model.CredentialStore = (*CredentialRepository)(nil)

// CredentialRepository keeps credentials in the credentials table, scoped by namespace.
type CredentialRepository struct {
	db        *Connection
	namespace string
}

func NewCredentialRepository(db *Connection, namespace string) *CredentialRepository {
	if namespace == "" {
		namespace = "default"
	}
	return &CredentialRepository{db: db, namespace: namespace}
}

func (r *CredentialRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `
        SELECT value FROM credentials WHERE namespace = $1 AND key = $2
    `
	var value string
	err := r.db.QueryRowContext(ctx, query, r.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to get credential: %w", err)
	}
	return value, nil
}

func (r *CredentialRepository) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO credentials (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
    `
	if _, err := r.db.ExecContext(ctx, query, r.namespace, key, value); err != nil {
		return fmt.Errorf("failed to set credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Remove(ctx context.Context, key string) error {
	const query = `
        DELETE FROM credentials WHERE namespace = $1 AND key = $2
    `
	if _, err := r.db.ExecContext(ctx, query, r.namespace, key); err != nil {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}
