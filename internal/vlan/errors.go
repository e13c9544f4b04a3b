package vlan

import "errors"

// Error kinds surfaced by Start. Wrapped causes remain inspectable with
// errors.Is / errors.As.
var (
	// ErrPrivilege indicates raw socket creation, the receive-all mode or the
	// header-included option was refused. The process needs to run elevated.
	ErrPrivilege = errors.New("raw socket access denied")

	// ErrPlatformInit indicates the platform networking subsystem failed to
	// initialise, or raw capture is not supported on this platform.
	ErrPlatformInit = errors.New("platform networking initialisation failed")

	// ErrHostAddress indicates no IPv4 address could be determined for the
	// local host.
	ErrHostAddress = errors.New("no local IPv4 address")

	// ErrBind indicates the capture socket could not be bound to the local
	// address.
	ErrBind = errors.New("cannot bind capture socket")
)
