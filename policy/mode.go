package policy

import (
	"fmt"
	"strings"
)

// Mode selects how a name set is interpreted.
type Mode uint8

const (
	// DenyList permits every name except the members of the set.
	DenyList Mode = iota
	// AllowList permits only the members of the set.
	AllowList
)

// String returns "allow" or "deny".
func (m Mode) String() string {
	switch m {
	case AllowList:
		return "allow"
	case DenyList:
		return "deny"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode accepts "allow", "allowlist", "deny" and "denylist" in any case.
// The empty string selects DenyList.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow", "allowlist", "allow-list", "allow_list":
		return AllowList, nil
	case "", "deny", "denylist", "deny-list", "deny_list":
		return DenyList, nil
	default:
		return DenyList, fmt.Errorf("unknown mode %q (expected allow or deny)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// admits reports whether a name with the given set membership is permitted.
func (m Mode) admits(member bool) bool {
	if m == AllowList {
		return member
	}
	return !member
}
