package requests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/filetree"
	"github.com/brettbedarf/filetree/internal/util"
)

// Maximum concurrent source fetches during Apply
const fetchConcurrency = 8

// Manifest is a decoded list of node requests, split by type
type Manifest struct {
	Dirs  []*filetree.DirCreateRequest
	Files []*filetree.FileCreateRequest
}

// Len is the total number of requests
func (m *Manifest) Len() int {
	return len(m.Dirs) + len(m.Files)
}

// LoadManifest reads a manifest file.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseYAMLManifest(data)
	case ".json":
		return ParseJSONManifest(data)
	default:
		return nil, fmt.Errorf("unsupported manifest file format: %s (supported: .yaml, .yml, .json)", ext)
	}
}

// ParseJSONManifest decodes a JSON array of entries. Malformed entries are
// skipped and reported together in the returned error alongside the
// manifest of the valid ones.
func ParseJSONManifest(data []byte) (*Manifest, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON manifest: %w", err)
	}
	decoders := make([]decodeFunc, len(raw))
	for i, entry := range raw {
		decoders[i] = jsonDecoder(entry)
	}
	return decodeEntries(decoders)
}

// ParseYAMLManifest is the YAML equivalent of [ParseJSONManifest]
func ParseYAMLManifest(data []byte) (*Manifest, error) {
	var raw []yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML manifest: %w", err)
	}
	decoders := make([]decodeFunc, len(raw))
	for i := range raw {
		decoders[i] = raw[i].Decode
	}
	return decodeEntries(decoders)
}

func decodeEntries(decoders []decodeFunc) (*Manifest, error) {
	logger := util.GetLogger("Manifest")
	m := &Manifest{}
	var errs []error

	for i, decode := range decoders {
		typ, err := nodeType(decode)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}

		switch typ {
		case filetree.FileNodeType:
			req, err := decodeFileRequest(decode)
			if err != nil {
				errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
				continue
			}
			m.Files = append(m.Files, req)
			logger.Trace().Str("path", req.Path).Str("uuid", req.UUID).Msg("Processed file request")

		case filetree.DirNodeType:
			req, err := decodeDirRequest(decode)
			if err != nil {
				errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
				continue
			}
			m.Dirs = append(m.Dirs, req)
			logger.Trace().Str("path", req.Path).Str("uuid", req.UUID).Msg("Processed directory request")

		default:
			errs = append(errs, fmt.Errorf("entry %d: %w %q", i, ErrUnknownType, typ))
		}
	}

	logger.Debug().
		Int("files", len(m.Files)).
		Int("directories", len(m.Dirs)).
		Int("errors", len(errs)).
		Msg("Decoded manifest")
	return m, errors.Join(errs...)
}

// Apply inserts every directory and then every file of m into tree.
// Directories that already exist are not an error. File sources are fetched
// here concurrently before any file is inserted. Failed requests do not stop
// the rest; their errors are joined into the returned error. Returns the
// number of requests applied.
func Apply(ctx context.Context, tree filetree.TreeOperator, m *Manifest) (int, error) {
	logger := util.GetLogger("Apply")
	var errs []error
	applied := 0

	for _, req := range m.Dirs {
		err := tree.InsertDir(req.Path)
		if err != nil && !errors.Is(err, filetree.ErrAlreadyInTree) {
			logger.Debug().Err(err).Str("path", req.Path).Str("uuid", req.UUID).Msg("Failed to add directory request")
			errs = append(errs, fmt.Errorf("dir %s: %w", req.Path, err))
			continue
		}
		applied++
	}

	contents := make([][]byte, len(m.Files))
	fetchErrs := make([]error, len(m.Files))
	var g errgroup.Group
	g.SetLimit(fetchConcurrency)
	for i, req := range m.Files {
		i, req := i, req
		g.Go(func() error {
			contents[i], fetchErrs[i] = fetchContents(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	for i, req := range m.Files {
		if err := fetchErrs[i]; err != nil {
			logger.Debug().Err(err).Str("path", req.Path).Str("uuid", req.UUID).Msg("Failed to fetch file contents")
			errs = append(errs, fmt.Errorf("file %s: %w", req.Path, err))
			continue
		}
		if err := tree.InsertFile(req.Path, contents[i]); err != nil {
			logger.Debug().Err(err).Str("path", req.Path).Str("uuid", req.UUID).Msg("Failed to add file request")
			errs = append(errs, fmt.Errorf("file %s: %w", req.Path, err))
			continue
		}
		applied++
	}

	logger.Info().Int("applied", applied).Int("failed", len(errs)).Msg("Applied manifest")
	return applied, errors.Join(errs...)
}

// fetchContents returns the inline contents or those of the first source
// that succeeds
func fetchContents(ctx context.Context, req *filetree.FileCreateRequest) ([]byte, error) {
	if req.Contents != nil || len(req.Sources) == 0 {
		return req.Contents, nil
	}
	logger := util.GetLogger("fetchContents")

	var errs []error
	for i, src := range req.Sources {
		data, err := src.Fetch(ctx)
		if err == nil {
			logger.Trace().Str("path", req.Path).Int("source", i).Int("size", len(data)).Msg("Fetched contents")
			return data, nil
		}
		logger.Debug().Err(err).Str("path", req.Path).Int("source", i).Msg("Source failed, trying next")
		errs = append(errs, fmt.Errorf("source %d: %w", i, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}
