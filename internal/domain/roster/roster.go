// Package roster maps authenticated principals back to the fixed list of
// participant names.
package roster

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmptyRoster   = errors.New("roster must contain at least one name")
	ErrEmptyName     = errors.New("roster name cannot be empty")
	ErrDuplicateName = errors.New("roster names must be distinct after normalization")
)

// Normalize folds a name into the form used both for credential identifiers
// and for reverse lookup: diacritics stripped, lowercased, whitespace removed.
// Both call sites must go through this function.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, stripped)
}

// Roster is the ordered, immutable list of eligible voters.
type Roster struct {
	names []string
	index map[string]string // normalized -> canonical
}

// New builds a roster, rejecting names that collide once normalized
func New(names []string) (*Roster, error) {
	if len(names) == 0 {
		return nil, ErrEmptyRoster
	}

	r := &Roster{
		names: make([]string, 0, len(names)),
		index: make(map[string]string, len(names)),
	}

	for _, name := range names {
		key := Normalize(name)
		if key == "" {
			return nil, ErrEmptyName
		}
		if existing, ok := r.index[key]; ok {
			return nil, fmt.Errorf("%w: %q and %q", ErrDuplicateName, existing, name)
		}
		r.index[key] = name
		r.names = append(r.names, name)
	}

	return r, nil
}

// MustNew is New for static rosters known to be valid
func MustNew(names []string) *Roster {
	r, err := New(names)
	if err != nil {
		panic(err)
	}
	return r
}

// Names returns a copy of the roster in display order
func (r *Roster) Names() []string {
	return append([]string(nil), r.names...)
}

// Size is the number of eligible voters
func (r *Roster) Size() int {
	return len(r.names)
}

// Lookup finds the canonical roster entry matching name under normalization
func (r *Roster) Lookup(name string) (string, bool) {
	canonical, ok := r.index[Normalize(name)]
	return canonical, ok
}

// CredentialEmail builds the synthetic login identifier for a roster name
func CredentialEmail(name, domain string) string {
	return Normalize(name) + "@" + domain
}

// Resolution is the outcome of mapping a principal handle to a display name.
type Resolution struct {
	DisplayName string
	Matched     bool
}

// Resolve maps an email-like principal handle to its roster name. When no
// entry matches, the handle's local part is returned with Matched unset;
// login is never refused on that account.
func (r *Roster) Resolve(handle string) Resolution {
	candidate := handle
	if at := strings.IndexByte(handle, '@'); at >= 0 {
		candidate = handle[:at]
	}

	if name, ok := r.Lookup(candidate); ok {
		return Resolution{DisplayName: name, Matched: true}
	}
	return Resolution{DisplayName: candidate}
}
