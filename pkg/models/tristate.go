package models

// Tristate is a capability flag that may not be known yet.
type Tristate int32

const (
	Unknown Tristate = iota
	Yes
	No
)

// TristateOf converts a known boolean to a Tristate.
func TristateOf(b bool) Tristate {
	if b {
		return Yes
	}
	return No
}

func (t Tristate) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// Known reports whether the flag carries a definite value.
func (t Tristate) Known() bool {
	return t == Yes || t == No
}
