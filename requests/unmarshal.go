package requests

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brettbedarf/filetree"
	"github.com/brettbedarf/filetree/adapters"
	"github.com/brettbedarf/filetree/internal/util"
)

var (
	ErrUnknownType = errors.New("unknown node type")
	ErrMissingPath = errors.New("missing path")
	ErrContent     = errors.New("invalid file content")
)

// decodeFunc decodes one manifest entry into v; it hides whether the entry
// came from JSON or YAML
type decodeFunc func(v any) error

func jsonDecoder(data []byte) decodeFunc {
	return func(v any) error {
		return json.Unmarshal(data, v)
	}
}

// GetNodeType extracts the node type from JSON without full unmarshaling
func GetNodeType(data []byte) (filetree.NodeCreateRequestType, error) {
	return nodeType(jsonDecoder(data))
}

func nodeType(decode decodeFunc) (filetree.NodeCreateRequestType, error) {
	var meta struct {
		Type filetree.NodeCreateRequestType `json:"type" yaml:"type"`
	}
	if err := decode(&meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

// UnmarshalFileRequest decodes a JSON file entry and its inline content
func UnmarshalFileRequest(data []byte) (*filetree.FileCreateRequest, error) {
	return decodeFileRequest(jsonDecoder(data))
}

// UnmarshalDirRequest decodes a JSON directory entry
func UnmarshalDirRequest(data []byte) (*filetree.DirCreateRequest, error) {
	return decodeDirRequest(jsonDecoder(data))
}

func decodeFileRequest(decode decodeFunc) (*filetree.FileCreateRequest, error) {
	var dto FileRequestDTO
	if err := decode(&dto); err != nil {
		return nil, err
	}
	node, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}
	contents, err := convertContent(dto)
	if err != nil {
		return nil, fmt.Errorf("%w at %s: %w", ErrContent, dto.Path, err)
	}
	sources, err := convertSources(dto.Sources)
	if err != nil {
		return nil, fmt.Errorf("%w at %s: %w", ErrContent, dto.Path, err)
	}
	return &filetree.FileCreateRequest{
		NodeRequest: node,
		Contents:    contents,
		Sources:     sources,
	}, nil
}

func decodeDirRequest(decode decodeFunc) (*filetree.DirCreateRequest, error) {
	var dto DirRequestDTO
	if err := decode(&dto); err != nil {
		return nil, err
	}
	node, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}
	return &filetree.DirCreateRequest{NodeRequest: node}, nil
}

func convertContent(dto FileRequestDTO) ([]byte, error) {
	set := 0
	for _, present := range []bool{dto.Content != nil, dto.ContentBase64 != nil, len(dto.Sources) > 0} {
		if present {
			set++
		}
	}
	switch {
	case set > 1:
		return nil, errors.New("content, content_base64 and sources are mutually exclusive")
	case dto.ContentBase64 != nil:
		return base64.StdEncoding.DecodeString(*dto.ContentBase64)
	case dto.Content != nil:
		return []byte(*dto.Content), nil
	}
	return nil, nil
}

// convertSources builds each source with the registered adapters
func convertSources(cfgs []adapters.SourceConfig) ([]filetree.ContentSource, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	sources := make([]filetree.ContentSource, 0, len(cfgs))
	for i, cfg := range cfgs {
		src, err := adapters.NewSource(cfg)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// Conversion logic with defaults in the unmarshaling layer
func convertNodeDTO(dto NodeRequestDTO) (filetree.NodeRequest, error) {
	if dto.Path == "" {
		return filetree.NodeRequest{}, fmt.Errorf("%w for %s entry", ErrMissingPath, dto.Type)
	}
	return filetree.NodeRequest{
		Path: dto.Path,
		Type: dto.Type,
		UUID: util.ValueOr(dto.UUID, uuid.New().String()),
	}, nil
}
