package tower

import "fmt"

// ConfigurationError means an instance record lacks the username or
// password needed to talk to it. This is the caller's setup problem,
// not a remote failure.
type ConfigurationError struct {
	Instance string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no credentials configured for instance %s", e.Instance)
}

// ConnectionError wraps a transport or HTTP failure while talking to a
// remote instance. Callers must treat it as "presence unknown", never as
// "type absent".
type ConnectionError struct {
	Instance string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to instance %s: %v", e.Instance, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
