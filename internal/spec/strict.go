package spec

import (
	"fmt"
	"strings"
)

// checkRequired reports the required top-level fields doc lacks.
func checkRequired(doc *Document) error {
	var missing []string
	for _, field := range []string{"info", "info.title", "info.version"} {
		if !doc.has(field) {
			missing = append(missing, field)
		}
	}

	switch {
	case doc.IsSwagger(), strings.HasPrefix(doc.Version, "3.0"):
		if !doc.has("paths") {
			missing = append(missing, "paths")
		}
	default:
		// 3.1 made paths optional as long as something is described.
		if !doc.has("paths") && !doc.has("webhooks") && !doc.has("components") {
			missing = append(missing, "paths|webhooks|components")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
