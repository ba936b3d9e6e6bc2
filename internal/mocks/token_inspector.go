package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/examshare/examshare-client/internal/model"
)

// TokenInspector is a testify mock of model.TokenInspector.
type TokenInspector struct {
	mock.Mock
}

var _ model.TokenInspector = (*TokenInspector)(nil)

func (m *TokenInspector) Inspect(token string) (model.TokenClaims, error) {
	args := m.Called(token)
	return args.Get(0).(model.TokenClaims), args.Error(1)
}
