package settlement

import (
	"fmt"
	"strconv"
	"strings"
)

const referencePrefix = "purchase:"

func FormatReference(purchaseID uint64) string {
	return referencePrefix + strconv.FormatUint(purchaseID, 10)
}

// ParseReference extracts the purchase id from "purchase:<id>". Only plain
// positive decimal ids are accepted.
func ParseReference(ref string) (uint64, error) {
	raw, ok := strings.CutPrefix(ref, referencePrefix)
	if !ok || raw == "" {
		return 0, fmt.Errorf("%w: external reference %q", ErrMalformedCallback, ref)
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: external reference %q", ErrMalformedCallback, ref)
		}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: external reference %q", ErrMalformedCallback, ref)
	}
	return id, nil
}
