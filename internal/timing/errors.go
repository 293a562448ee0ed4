package timing

import (
	"errors"
	"fmt"
)

// ContractName identifies the timing contract in user agents and error prefixes.
const ContractName = "HsmTest"

// ErrNotImplemented is returned by UnimplementedAdapter for every measured operation.
var ErrNotImplemented = errors.New("method not implemented")

// ConfigurationError reports missing required input, such as the target URL.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// UsageError reports a violation of the start/finish protocol by an adapter.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// AdapterError attributes a failed measurement to the adapter that produced it.
type AdapterError struct {
	Test string
	Err  error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ContractName, e.Test, errorText(e.Err))
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func errorText(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown error"
	}
	return err.Error()
}
