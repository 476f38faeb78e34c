package network

import "fmt"

// A FatalError reports corruption of the partition invariant. It is never
// retried or downgraded: the driver must stop the simulation when one
// surfaces.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return "partition corrupted: " + e.Reason
}

func fatalf(format string, args ...any) *FatalError {
	return &FatalError{Reason: fmt.Sprintf(format, args...)}
}
