package adapters

import (
	"context"
	"errors"
	"os"

	"github.com/brettbedarf/filetree"
)

// FileProvider builds sources that read a local file
type FileProvider struct{}

func (p *FileProvider) NewSource(cfg SourceConfig) (filetree.ContentSource, error) {
	if cfg.Path == "" {
		return nil, errors.New("file source requires a path")
	}
	return &FileSource{path: cfg.Path}, nil
}

// FileSource implements [filetree.ContentSource] for local files
type FileSource struct {
	path string
}

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.path)
}
