package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_SingleProvider(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	p := &FileProvider{}
	r.Register(FileSourceType, p)

	provider, err := r.GetProvider(FileSourceType)
	require.NoError(t, err)
	assert.Same(t, p, provider)
}

func TestRegister_DuplicateProviderReplaces(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first, second := &HTTPProvider{}, &HTTPProvider{}
	r.Register(HTTPSourceType, first)
	r.Register(HTTPSourceType, second)

	provider, err := r.GetProvider(HTTPSourceType)
	require.NoError(t, err)
	assert.Same(t, second, provider)
}

func TestRegistry_UnknownType(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.NewSource(SourceConfig{Type: "s3"})
	assert.ErrorContains(t, err, `no provider for source type "s3"`)
}

func TestRegisterBuiltins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	RegisterBuiltinsTo(r, FileSourceType)
	_, err := r.GetProvider(FileSourceType)
	assert.NoError(t, err)
	_, err = r.GetProvider(HTTPSourceType)
	assert.Error(t, err, "only requested builtins are registered")

	RegisterBuiltinsTo(r)
	provider, err := r.GetProvider(HTTPSourceType)
	require.NoError(t, err)
	assert.IsType(t, &HTTPProvider{}, provider)
}

func TestRegister_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Register(fmt.Sprintf("type%d", i), &FileProvider{})
			_, _ = r.GetProvider(FileSourceType)
		}()
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		_, err := r.GetProvider(fmt.Sprintf("type%d", i))
		assert.NoError(t, err)
	}
}

func TestFileSource_Fetch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0o644))

	r := NewRegistry()
	RegisterBuiltinsTo(r)
	src, err := r.NewSource(SourceConfig{Type: FileSourceType, Path: path})
	require.NoError(t, err)
	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	_, err = r.NewSource(SourceConfig{Type: FileSourceType})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
