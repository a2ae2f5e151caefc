package adapters

type BuiltInSourceType = string

const (
	HTTPSourceType BuiltInSourceType = "http"
	FileSourceType BuiltInSourceType = "file"
)

// RegisterBuiltins registers all built-in sources with the default registry
// or only the specific ones if keys are provided
func RegisterBuiltins(sources ...BuiltInSourceType) {
	RegisterBuiltinsTo(defaultRegistry, sources...)
}

func RegisterBuiltinsTo(r *Registry, sources ...BuiltInSourceType) {
	if len(sources) == 0 {
		// Include all built-in sources here when adding implementations
		sources = append(sources, HTTPSourceType, FileSourceType)
	}

	for _, key := range sources {
		switch key {
		case HTTPSourceType:
			RegisterHTTP(r, NewRetryClient())
		case FileSourceType:
			r.Register(FileSourceType, &FileProvider{})
		}
	}
}
