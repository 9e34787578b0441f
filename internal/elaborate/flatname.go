package elaborate

import (
	"fmt"
	"strings"

	"github.com/mitchellh/hashstructure"

	"github.com/hdl21/elaborate/internal/errors"
)

// maxNameLen is the hard ceiling on generated names.
const maxNameLen = 511

// flatname produces a collision-avoiding name from segments, joined with
// underscores and wrapped in leading/trailing underscores: "_a_b_". If the
// candidate collides with a name in avoid, it is re-wrapped with one more
// leading and trailing underscore and retried until it is unique or
// exceeds maxlen, in which case it fails with ELAB001.
func flatname(segments []string, avoid map[string]bool, maxlen int) (string, error) {
	base := strings.Join(segments, "_")
	candidate := "_" + base + "_"

	for {
		if len(candidate) > maxlen {
			return "", errors.Wrap(errors.ELAB001, "shared",
				fmt.Sprintf("could not produce a unique name for %v under %d characters", segments, maxlen),
				errors.Location{})
		}
		if !avoid[candidate] {
			return candidate, nil
		}
		candidate = "_" + candidate + "_"
	}
}

// uniqueName deterministically encodes a generator argument into a
// filesystem-safe suffix, used to disambiguate concrete module names
// produced from distinct GeneratorCall arguments. It is
// backed by hashstructure.Hash so structurally equal arguments always
// yield the same suffix, regardless of Go value identity.
func uniqueName(arg any) (string, error) {
	h, err := hashstructure.Hash(arg, nil)
	if err != nil {
		return "", fmt.Errorf("hashing generator argument: %w", err)
	}
	return fmt.Sprintf("%x", h), nil
}
