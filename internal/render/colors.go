package render

import "os"

// ColorsEnabled reports whether styled output should be used. It honors the
// NO_COLOR convention and dumb terminals.
func ColorsEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}
