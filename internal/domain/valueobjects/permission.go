package valueobjects

import (
	"fmt"
	"strings"
)

// Capability is an OS-gated permission class.
type Capability string

const (
	CapabilityCamera  Capability = "camera"
	CapabilityStorage Capability = "storage"
)

// CaptureCapabilities are the capabilities every capture run needs, in request order.
var CaptureCapabilities = []Capability{CapabilityCamera, CapabilityStorage}

type PermissionStatus int

const (
	PermissionNotDetermined PermissionStatus = iota
	PermissionDenied
	PermissionGranted
)

func (s PermissionStatus) String() string {
	switch s {
	case PermissionDenied:
		return "denied"
	case PermissionGranted:
		return "granted"
	default:
		return "not_determined"
	}
}

func (s PermissionStatus) IsGranted() bool {
	return s == PermissionGranted
}

func ParsePermissionStatus(value string) (PermissionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "granted", "allow", "allowed":
		return PermissionGranted, nil
	case "denied", "deny":
		return PermissionDenied, nil
	case "", "not_determined", "notdetermined", "unknown":
		return PermissionNotDetermined, nil
	default:
		return PermissionNotDetermined, fmt.Errorf("unknown permission status: %q", value)
	}
}
