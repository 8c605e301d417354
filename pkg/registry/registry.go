// Package registry loads and validates the notable-functions configuration
// (spec.md §6 "Configuration file"): the mapping from a watched, handler or
// logger function's name to its role in the classifier.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// Role is the variant a notable function entry was declared as.
type Role int

const (
	// RoleWatchedReturnValue marks a function whose contract is to signal
	// errors through its return value.
	RoleWatchedReturnValue Role = iota
	// RoleWatchedErrno marks a function whose contract is to signal errors
	// out-of-band via errno.
	RoleWatchedErrno
	// RoleHandler marks a function that, as the direct parent call of an
	// error value, terminates analysis with passed_to_handler_fn.
	RoleHandler
	// RoleLogger marks a function that marks an error value as logged
	// without itself terminating analysis.
	RoleLogger
)

func (r Role) String() string {
	switch r {
	case RoleWatchedReturnValue:
		return "watched-return-value"
	case RoleWatchedErrno:
		return "watched-errno"
	case RoleHandler:
		return "handler"
	case RoleLogger:
		return "logger"
	default:
		return "unknown"
	}
}

// rawEntry mirrors one element of the configuration file's JSON array,
// before validation picks out exactly one populated variant.
type rawEntry struct {
	Name      string `json:"name"`
	Reporting string `json:"reporting"`
	Type      string `json:"type"`
}

// Registry is the validated, deduplicated mapping from function name to
// role. It is immutable after Load.
type Registry struct {
	byName map[string]Role
}

// Load reads and validates the notable-functions configuration file at
// path. It enforces every invariant of spec.md §3/§6: names are non-empty,
// no name appears under more than one role, and each entry sets exactly one
// of reporting/type to a recognized value.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}

	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}

	reg := &Registry{byName: make(map[string]Role, len(raw))}
	for i, e := range raw {
		role, err := classifyEntry(e)
		if err != nil {
			return nil, fmt.Errorf("registry: entry %d: %w", i, err)
		}
		if _, dup := reg.byName[e.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate name %q", e.Name)
		}
		reg.byName[e.Name] = role
	}

	return reg, nil
}

// classifyEntry validates a single raw entry and resolves its role.
func classifyEntry(e rawEntry) (Role, error) {
	if e.Name == "" {
		return 0, fmt.Errorf("empty name")
	}

	hasReporting := e.Reporting != ""
	hasType := e.Type != ""

	switch {
	case hasReporting && hasType:
		return 0, fmt.Errorf("%q: entry sets both reporting and type", e.Name)
	case hasReporting:
		switch e.Reporting {
		case "return_value":
			return RoleWatchedReturnValue, nil
		case "errno":
			return RoleWatchedErrno, nil
		default:
			return 0, fmt.Errorf("%q: unknown reporting %q", e.Name, e.Reporting)
		}
	case hasType:
		switch e.Type {
		case "handler":
			return RoleHandler, nil
		case "logger":
			return RoleLogger, nil
		default:
			return 0, fmt.Errorf("%q: unknown type %q", e.Name, e.Type)
		}
	default:
		return 0, fmt.Errorf("%q: neither reporting nor type set", e.Name)
	}
}

// Lookup returns the role registered for name, and whether it was found.
func (r *Registry) Lookup(name string) (Role, bool) {
	role, ok := r.byName[name]
	return role, ok
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.byName)
}
