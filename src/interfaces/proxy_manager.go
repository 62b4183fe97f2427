package interfaces

// -----------------------------------------------------------------------------
// IProxyManager supplies the outbound identity for history requests:
// the proxy to route through and the User-Agent to send.
// -----------------------------------------------------------------------------

type IProxyManager interface {
	// GetCurrentProxy returns the active proxy URL, or "" when requests go direct.
	GetCurrentProxy() (string, error)

	// RotateProxy moves to the next configured proxy after a blocked request.
	RotateProxy()

	HasProxies() bool

	GetUserAgent() string
}
