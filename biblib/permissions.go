// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblib

import (
	"regexp"
	"sort"

	"github.com/pdiddy/adsabs/transport"
)

// Permission is the set of rights one collaborator holds on a library.
type Permission struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
	Admin bool `json:"admin"`
}

// None reports whether every right is revoked.
func (p Permission) None() bool { return !p.Read && !p.Write && !p.Admin }

// Names returns the granted permission names in canonical order.
func (p Permission) Names() []string {
	var out []string
	if p.Read {
		out = append(out, "read")
	}
	if p.Write {
		out = append(out, "write")
	}
	if p.Admin {
		out = append(out, "admin")
	}
	return out
}

// ParsePermission builds a Permission from the names the API uses. Unknown
// names are a validation error. "owner" appears in listings but is not a
// grantable right.
func ParsePermission(names []string) (Permission, error) {
	var p Permission
	for _, name := range names {
		switch name {
		case "read":
			p.Read = true
		case "write":
			p.Write = true
		case "admin":
			p.Admin = true
		case "owner":
			// Reported for the owning user; carries every right.
			p.Read, p.Write, p.Admin = true, true, true
		default:
			return Permission{}, transport.Validationf("unknown permission name %q", name)
		}
	}
	return p, nil
}

// emailRe is deliberately loose; the server is the authority on addresses.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return transport.Validationf("invalid email address %q", email)
	}
	return nil
}

// sortedEmails returns the keys of a permission map in stable order, so
// save issues permission requests deterministically.
func sortedEmails(m map[string]Permission) []string {
	out := make([]string, 0, len(m))
	for email := range m {
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}
