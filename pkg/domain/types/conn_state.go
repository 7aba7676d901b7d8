package types

import "fmt"

// ConnState represents the state of the live notification stream
type ConnState string

const (
	ConnDisconnected ConnState = "disconnected"
	ConnConnecting   ConnState = "connecting"
	ConnConnected    ConnState = "connected"
)

// AllConnStates returns all valid connection states
func AllConnStates() []ConnState {
	return []ConnState{
		ConnDisconnected,
		ConnConnecting,
		ConnConnected,
	}
}

// IsValid checks if the connection state is valid
func (s ConnState) IsValid() bool {
	switch s {
	case ConnDisconnected, ConnConnecting, ConnConnected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the connection state
func (s ConnState) String() string {
	return string(s)
}

// ParseConnState parses a string into a ConnState
func ParseConnState(s string) (ConnState, error) {
	state := ConnState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid connection state: %s", s)
	}
	return state, nil
}
