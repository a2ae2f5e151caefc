package filetree

// NodeInfo provides read-only access to node information for external consumers
type NodeInfo interface {
	// Path returns the node's rendered path, i.e. "a/b/c"
	Path() string

	// Name returns the last path component
	Name() string

	// IsFile reports whether the node is a file rather than a directory
	IsFile() bool

	// Size is the content length for files and the number of children for directories
	Size() int
}

// TreeOperator defines the path-addressed operations external consumers need
type TreeOperator interface {
	InsertDir(path string) error
	InsertFile(path string, contents []byte) error
	RemoveDir(path string) error
	RemoveFile(path string) error
	ContainsDir(path string) bool
	ContainsFile(path string) bool
}
