package filetree

import "context"

// NodeRequest has common fields embedded in concrete request types
type NodeRequest struct {
	Path string
	Type NodeCreateRequestType
	UUID string // Optional UUID identifying the request in logs
}

// NodeCreateRequestType valid types are FileNodeType "file", DirNodeType "dir"
type NodeCreateRequestType string

const (
	FileNodeType NodeCreateRequestType = "file"
	DirNodeType  NodeCreateRequestType = "dir"
)

type FileCreateRequest struct {
	NodeRequest
	Contents []byte
	Sources  []ContentSource // Tried in order for the contents when Contents is nil
}

// ContentSource produces the initial contents of a file, i.e. from a URL
type ContentSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

type DirCreateRequest struct {
	NodeRequest
}
