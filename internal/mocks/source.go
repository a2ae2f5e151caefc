package mocks

import (
	"context"

	"github.com/brettbedarf/filetree"
	"github.com/stretchr/testify/mock"
)

// MockContentSource implements filetree.ContentSource for testing across packages
type MockContentSource struct {
	mock.Mock
}

func (m *MockContentSource) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)

	// Handle nil returns
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var _ filetree.ContentSource = (*MockContentSource)(nil)
