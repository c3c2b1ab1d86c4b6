package roster

import (
	"fmt"
	"strings"
)

// Branch is the label of one of the two competing branches.
type Branch string

func (b Branch) String() string { return string(b) }

// Branches holds the two configured branch labels. A is always listed first
// in merged views.
type Branches struct {
	A Branch
	B Branch
}

// NewBranches builds a branch pair from raw labels.
func NewBranches(a, b string) Branches {
	return Branches{A: Branch(canonicalBranch(a)), B: Branch(canonicalBranch(b))}
}

// Parse resolves a user-supplied label (case-insensitive) to one of the two
// branches.
func (bs Branches) Parse(label string) (Branch, error) {
	switch canonicalBranch(label) {
	case string(bs.A):
		return bs.A, nil
	case string(bs.B):
		return bs.B, nil
	default:
		return "", fmt.Errorf("unknown branch %q (expected %s or %s)", strings.TrimSpace(label), bs.A, bs.B)
	}
}

// Valid reports whether b is one of the two branches.
func (bs Branches) Valid(b Branch) bool {
	return b == bs.A || b == bs.B
}

// Other returns the competing branch of b.
func (bs Branches) Other(b Branch) Branch {
	if b == bs.A {
		return bs.B
	}
	return bs.A
}

func canonicalBranch(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
