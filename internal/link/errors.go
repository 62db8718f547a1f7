package link

import "errors"

// Normalized link errors. Driver implementations wrap these so callers
// can branch on the failure class without knowing the vendor detail.
var (
	// ErrInitFailed reports that the link stack rejected
	// initialization. Fatal at boot; retryable after a wake.
	ErrInitFailed = errors.New("link init failed")

	// ErrPeerRejected reports that the peer table refused a
	// registration.
	ErrPeerRejected = errors.New("peer registration rejected")

	// ErrUnknownPeer reports a send to an address that is not
	// registered in the peer table.
	ErrUnknownPeer = errors.New("peer not registered")

	// ErrSendFailed reports that the link layer rejected a transmit.
	ErrSendFailed = errors.New("send rejected")
)
