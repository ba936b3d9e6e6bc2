package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/examshare/examshare-client/internal/model"
)

// CredentialStore is a testify mock of model.CredentialStore.
type CredentialStore struct {
	mock.Mock
}

var _ model.CredentialStore = (*CredentialStore)(nil)

func (m *CredentialStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *CredentialStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *CredentialStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
