package cli

import "time"

const (
	// DefaultConnectTimeout bounds connection establishment when
	// --connect-timeout is not given.
	DefaultConnectTimeout = 300 * time.Second

	// DefaultTimeout bounds the whole transfer when --max-time is not given.
	DefaultTimeout = 300 * time.Second

	// DefaultMaxRedirect is the redirect budget when --max-redirs is not
	// given. The explicit value -1 lifts the budget entirely.
	DefaultMaxRedirect = 50
)
