package eventagg

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for registration.
var (
	// ErrNoHandlerContract indicates a listener declares no message contracts.
	ErrNoHandlerContract = errors.New("listener implements no handler contract")

	// ErrInvalidListener indicates a listener that is nil or not a pointer.
	ErrInvalidListener = errors.New("listener must be a non-nil pointer")
)

// NoHandlerContractError is returned by AddListener when the listener
// implements none of the recognized message contracts.
type NoHandlerContractError struct {
	ListenerType reflect.Type
}

// Error implements error interface.
func (e *NoHandlerContractError) Error() string {
	return fmt.Sprintf("listener %s implements no handler contract", typeName(e.ListenerType))
}

// Is reports whether target is ErrNoHandlerContract.
func (e *NoHandlerContractError) Is(target error) bool {
	return target == ErrNoHandlerContract
}

// ContractError describes a contract that cannot be bound to its listener.
type ContractError struct {
	ListenerType reflect.Type // Listener being registered
	MessageType  reflect.Type // Message type of the offending contract
	Message      string
}

// Error implements error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("listener %s: contract for %s: %s",
		typeName(e.ListenerType), typeName(e.MessageType), e.Message)
}

// typeName returns a printable name for t, including nil.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
