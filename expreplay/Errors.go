package expreplay

import (
	"fmt"

	"github.com/pkg/errors"
)

// ReplayError implements errors unique to a replay memory
type ReplayError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *ReplayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ReplayError) Unwrap() error {
	return e.Err
}

var errEmptyBuffer = errors.New("buffer empty")

var errOutOfRange = errors.New("index out of range")

var errOverwritten = errors.New("transitions overwritten")

// IsEmptyBuffer returns whether or not an error reports that a replay
// memory is empty.
func IsEmptyBuffer(err error) bool {
	return errors.Is(err, errEmptyBuffer)
}

// IsOutOfRange returns whether or not an error reports that a replay
// memory was indexed past its current size.
func IsOutOfRange(err error) bool {
	return errors.Is(err, errOutOfRange)
}

// IsOverwritten returns whether or not an error reports that a replay
// memory overwrote Transitions which were still needed.
func IsOverwritten(err error) bool {
	return errors.Is(err, errOverwritten)
}

// ProtocolError reports that a piece of a transition was recorded out
// of order. Expected is the piece of information that should have been
// recorded instead.
type ProtocolError struct {
	Op       string
	Expected Stage
}

// Error satisifes the error interface
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%v: invalid protocol state: expected information: %v",
		e.Op, e.Expected)
}

// IsInvalidProtocolState returns whether or not an error reports that
// the staged recording protocol was violated.
func IsInvalidProtocolState(err error) bool {
	var protocolErr *ProtocolError
	return errors.As(err, &protocolErr)
}
