package session

import (
	"fmt"
	"regexp"
)

var identityRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateIdentity checks that identity is usable as a topic segment and a
// directory name. Roster membership is checked separately.
func ValidateIdentity(identity string) error {
	if !identityRegexp.MatchString(identity) {
		return fmt.Errorf("invalid identity %q: must match ^[a-z0-9_-]{1,64}$", identity)
	}
	return nil
}
