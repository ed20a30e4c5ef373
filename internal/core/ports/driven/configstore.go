package driven

// ConfigStore holds persisted settings addressed by dot-notation keys
// such as "openai.model". Typed getters return the zero value when the key
// is missing or holds another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set stores value and persists it before returning.
	Set(key string, value any) error

	// All returns a copy of every stored key.
	All() map[string]any

	// Load re-reads the backing storage.
	Load() error

	// Path identifies the backing storage, a file path for file stores.
	Path() string
}
