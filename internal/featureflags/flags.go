package featureflags

import (
	"os"
	"strings"
)

// Known flags and whether they ship enabled. Operators flip a flag with
// FLAG_<NAME>=true/false in the environment.
var defaults = map[string]bool{
	"announcement_feed": true,
	"booking_sweeper":   true,
	"room_list_cache":   true,
}

// Enabled reports whether a flag is on, honoring an environment
// override before falling back to the shipped default. Unknown flags
// are off unless the environment enables them.
func Enabled(name string) bool {
	if v, ok := os.LookupEnv("FLAG_" + strings.ToUpper(name)); ok {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		default:
			return false
		}
	}
	return defaults[name]
}
