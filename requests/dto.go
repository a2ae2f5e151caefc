package requests

import (
	"github.com/brettbedarf/filetree"
	"github.com/brettbedarf/filetree/adapters"
)

// NodeRequestDTO is the manifest representation of [filetree.NodeRequest]
type NodeRequestDTO struct {
	Path string                         `json:"path" yaml:"path"`
	Type filetree.NodeCreateRequestType `json:"type" yaml:"type"`
	UUID *string                        `json:"uuid,omitempty" yaml:"uuid,omitempty"` // Optional UUID to trace the request in logs
}

// FileRequestDTO is the manifest representation of [filetree.FileCreateRequest].
// At most one of Content, ContentBase64 and Sources may be set; none means an
// empty file.
type FileRequestDTO struct {
	NodeRequestDTO `yaml:",inline"`
	Content        *string `json:"content,omitempty" yaml:"content,omitempty"`
	ContentBase64  *string `json:"content_base64,omitempty" yaml:"content_base64,omitempty"`
	// Sources are fetched in order when the manifest is applied; the first
	// that succeeds provides the contents. See package adapters for types.
	Sources []adapters.SourceConfig `json:"sources,omitempty" yaml:"sources,omitempty"`
}

type DirRequestDTO struct {
	NodeRequestDTO `yaml:",inline"`
}
