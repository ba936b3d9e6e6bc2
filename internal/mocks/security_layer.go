package mocks

import (
	"net"

	"github.com/stretchr/testify/mock"

	"github.com/examshare/examshare-client/internal/model"
)

// SecurityLayer is a testify mock of model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

var _ model.SecurityLayer = (*SecurityLayer)(nil)

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	var l net.Listener
	if v := args.Get(0); v != nil {
		l = v.(net.Listener)
	}
	return l, args.Error(1)
}

// NewSecurityLayer creates a SecurityLayer mock whose expectations are
// asserted when the test finishes.
func NewSecurityLayer(t interface {
	mock.TestingT
	Cleanup(func())
}) *SecurityLayer {
	m := &SecurityLayer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
