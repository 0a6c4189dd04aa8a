package transform

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// KebabID converts a component identifier such as "UserProfile" into the
// injected attribute value "user-profile".
func KebabID(component string) string {
	return strings.ToLower(strcase.ToKebab(component))
}
