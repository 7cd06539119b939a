package matching

import "strings"

// Mode selects which members of the target a wrapper declaration mirrors. The
// meaningful values are ModeNone, ModeAll, ModeDeclared, ModeInterface, and
// ModeDeclared|ModeInterface; ModeAll subsumes the others and is never
// combined.
type Mode uint

const (
	// ModeNone mirrors no members.
	ModeNone Mode = 0

	// ModeAll mirrors every public target member not overridden by the user.
	ModeAll Mode = 1 << iota

	// ModeDeclared mirrors only user-declared stub members.
	ModeDeclared

	// ModeInterface mirrors only members required by the interface set.
	ModeInterface
)

// Has reports whether the mode includes the given flag.
func (m Mode) Has(flag Mode) bool { return m&flag != 0 }

func (m Mode) String() string {
	if m == ModeNone {
		return "none"
	}

	var parts []string
	if m.Has(ModeAll) {
		parts = append(parts, "all")
	}
	if m.Has(ModeDeclared) {
		parts = append(parts, "declared")
	}
	if m.Has(ModeInterface) {
		parts = append(parts, "interface")
	}
	return strings.Join(parts, "|")
}
