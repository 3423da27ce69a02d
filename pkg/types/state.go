package types

// ServerState is the lifecycle state of a single server, as tracked by the
// coordinator in internal/server and persisted by the manager's checkpoint.
type ServerState int

const (
	StateOffline ServerState = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s ServerState) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state as its lowercase name, matching the
// checkpoint file format documented in SPEC_FULL.md §6.
func (s ServerState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts any of the known state names; unknown values decode
// to StateOffline so a corrupt or foreign checkpoint never blocks boot.
func (s *ServerState) UnmarshalJSON(data []byte) error {
	str := string(data)
	switch str {
	case `"starting"`:
		*s = StateStarting
	case `"running"`:
		*s = StateRunning
	case `"stopping"`:
		*s = StateStopping
	default:
		*s = StateOffline
	}
	return nil
}

// IsActive reports whether the state represents a server that should be
// restarted on boot reconciliation (SPEC_FULL.md §4.6).
func (s ServerState) IsActive() bool {
	return s == StateRunning || s == StateStarting
}
