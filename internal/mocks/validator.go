package mocks

import (
	"github.com/brettbedarf/filetree/checker"
	"github.com/stretchr/testify/mock"
)

// MockValidator implements a whole-tree validator for testing across packages
type MockValidator[H comparable] struct {
	mock.Mock
}

func (m *MockValidator[H]) CheckTree(s checker.State[H]) error {
	args := m.Called(s)

	// Handle function return types (for stateful tests)
	if fn, ok := args.Get(0).(func(checker.State[H]) error); ok {
		return fn(s)
	}
	return args.Error(0)
}
