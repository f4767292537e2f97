package broadcast

import "fmt"

// BindError reports that the listening socket could not be established,
// typically because the address is in use or the port is privileged.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// ConnectionClosedError reports a frame that could not be written because
// the peer went away. It only ever ends the loop of that one connection.
type ConnectionClosedError struct {
	Remote string
	Err    error
}

func (e *ConnectionClosedError) Error() string {
	return fmt.Sprintf("connection %s closed: %v", e.Remote, e.Err)
}

func (e *ConnectionClosedError) Unwrap() error {
	return e.Err
}
