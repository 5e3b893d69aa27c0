package access

import "github.com/dmitrijs2005/bookreview/internal/common"

// AssertOwner allows a mutation only when subject is exactly the owner's
// username. Comparison is case-sensitive.
func AssertOwner(owner, subject string) error {
	if subject == "" {
		return common.ErrorUnauthorized
	}
	if owner != subject {
		return common.ErrorForbidden
	}
	return nil
}
