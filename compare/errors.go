package compare

import "fmt"

// ConfigurationError reports an invalid sort specification. It is returned
// when the comparator is built, before any comparison runs.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("compare: invalid sort path %q: %s", e.Path, e.Reason)
}
