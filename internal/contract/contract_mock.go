package contract

import (
	"context"

	"github.com/huangsam/aieval/schema"
	"github.com/stretchr/testify/mock"
)

// MockOracle is a mock implementation of Oracle for testing.
type MockOracle struct {
	mock.Mock
}

var _ Oracle = &MockOracle{} // Compile-time check

// Complete implements the Oracle interface.
func (m *MockOracle) Complete(ctx context.Context, req schema.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
