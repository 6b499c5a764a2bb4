package svn

import (
	"errors"
	"fmt"
)

const (
	executorMissingMessageConstant        = "subversion executor not configured"
	clientClosedMessageConstant           = "subversion client already closed"
	noLogEntriesMessageConstant           = "no log entries returned"
	itemOutsideLocationMessageConstant    = "changed item is outside the diffed location"
	operationErrorTemplateConstant        = "svn %s %s: %v"
	responseDecodingErrorTemplateConstant = "decode svn %s response: %v"
)

// ErrExecutorNotConfigured indicates the client was opened without an executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrClientClosed indicates an operation was attempted after Close.
var ErrClientClosed = errors.New(clientClosedMessageConstant)

// ErrNoLogEntries indicates a history query matched no revisions.
var ErrNoLogEntries = errors.New(noLogEntriesMessageConstant)

// ErrItemOutsideLocation indicates a diff summary listed a URL that is not below the diffed location.
var ErrItemOutsideLocation = errors.New(itemOutsideLocationMessageConstant)

// OperationError reports a failed svn invocation against a location.
type OperationError struct {
	Operation string
	Location  string
	Cause     error
}

// Error describes the failed operation.
func (operationError *OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Location, operationError.Cause)
}

// Unwrap exposes the executor failure.
func (operationError *OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError reports svn output that could not be decoded.
type ResponseDecodingError struct {
	Operation string
	Cause     error
}

// Error describes the decoding failure.
func (decodingError *ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the decoder failure.
func (decodingError *ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}
