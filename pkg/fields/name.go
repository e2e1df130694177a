package fields

import (
	"github.com/dlclark/regexp2"

	"github.com/byroot/fieldstore/pkg/errors"
)

// Attribute names follow host instance-variable conventions: an
// optional @ sigil followed by an identifier. Validation runs only on
// the append path (first definition of a name), never on reads.
var namePattern = regexp2.MustCompile(`\A@?[A-Za-z_][A-Za-z0-9_]*\z`, regexp2.None)

func validateName(name string) error {
	ok, err := namePattern.MatchString(name)
	if err != nil {
		return errors.NewName(name, "name validation failed").CausedBy(err)
	}
	if !ok {
		return errors.NewName(name, "must be an identifier, optionally prefixed with @")
	}
	return nil
}

// ValidName reports whether name would be accepted as a new attribute.
func ValidName(name string) bool {
	return validateName(name) == nil
}
