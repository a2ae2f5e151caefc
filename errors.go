package filetree

import "errors"

// Closed error taxonomy shared by every tree operation. Operations wrap these
// with the offending path, so compare with errors.Is.
var (
	ErrMemory          = errors.New("memory error")
	ErrConflictingPath = errors.New("conflicting path")
	ErrNoSuchPath      = errors.New("no such path")
	ErrAlreadyInTree   = errors.New("already in tree")
	ErrNotADirectory   = errors.New("not a directory")
	ErrInitialization  = errors.New("initialization error")
	ErrBadPath         = errors.New("bad path")
)

// Status is the numeric form of an operation result, used by the CLI exit codes.
type Status int

const (
	Success Status = iota
	MemoryError
	ConflictingPath
	NoSuchPath
	AlreadyInTree
	NotADirectory
	InitializationError
	BadPath
	// UnknownError is returned by StatusOf for errors outside the taxonomy
	UnknownError
)

var statusErrs = []struct {
	status Status
	err    error
}{
	{MemoryError, ErrMemory},
	{ConflictingPath, ErrConflictingPath},
	{NoSuchPath, ErrNoSuchPath},
	{AlreadyInTree, ErrAlreadyInTree},
	{NotADirectory, ErrNotADirectory},
	{InitializationError, ErrInitialization},
	{BadPath, ErrBadPath},
}

// StatusOf maps err onto the taxonomy. A nil error is Success.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	for _, se := range statusErrs {
		if errors.Is(err, se.err) {
			return se.status
		}
	}
	return UnknownError
}

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case MemoryError:
		return "MEMORY_ERROR"
	case ConflictingPath:
		return "CONFLICTING_PATH"
	case NoSuchPath:
		return "NO_SUCH_PATH"
	case AlreadyInTree:
		return "ALREADY_IN_TREE"
	case NotADirectory:
		return "NOT_A_DIRECTORY"
	case InitializationError:
		return "INITIALIZATION_ERROR"
	case BadPath:
		return "BAD_PATH"
	default:
		return "UNKNOWN_ERROR"
	}
}
