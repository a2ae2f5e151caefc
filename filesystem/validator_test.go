package filesystem_test

import (
	"errors"
	"testing"

	"github.com/brettbedarf/filetree/checker"
	"github.com/brettbedarf/filetree/config"
	"github.com/brettbedarf/filetree/filesystem"
	"github.com/brettbedarf/filetree/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTree_ValidatesAroundMutations(t *testing.T) {
	v := new(mocks.MockValidator[filesystem.Handle])
	v.On("CheckTree", mock.Anything).Return(nil)

	tree, err := filesystem.NewTree(config.NewConfig(nil), filesystem.WithValidator(v))
	require.NoError(t, err)
	require.NoError(t, tree.Init())
	require.NoError(t, tree.InsertDir("a/b"))

	// before and after each of the two mutations
	v.AssertNumberOfCalls(t, "CheckTree", 4)

	v.AssertCalled(t, "CheckTree", mock.MatchedBy(func(s checker.State[filesystem.Handle]) bool {
		return s.Initialized && s.HasRoot && s.Count == 2
	}))
}

func TestTree_ValidatorFailurePanics(t *testing.T) {
	boom := errors.New("boom")
	v := new(mocks.MockValidator[filesystem.Handle])
	v.On("CheckTree", mock.Anything).Return(func(s checker.State[filesystem.Handle]) error {
		if s.Count > 0 {
			return boom
		}
		return nil
	})

	tree, err := filesystem.NewTree(config.NewConfig(nil), filesystem.WithValidator(v))
	require.NoError(t, err)
	require.NoError(t, tree.Init())

	// the post-mutation check sees the new node
	assert.PanicsWithError(t, "boom", func() { _ = tree.InsertDir("a") })
	assert.Equal(t, boom, tree.Check())
}

func TestTree_ValidatorSkippedWhenDisabled(t *testing.T) {
	cfg := config.NewConfig(nil)
	cfg.CheckInvariants = false
	v := new(mocks.MockValidator[filesystem.Handle])

	tree, err := filesystem.NewTree(cfg, filesystem.WithValidator(v))
	require.NoError(t, err)
	require.NoError(t, tree.Init())
	require.NoError(t, tree.InsertFile("a/f", []byte("x")))
	assert.True(t, tree.ContainsFile("a/f"))

	v.AssertNotCalled(t, "CheckTree", mock.Anything)
}
