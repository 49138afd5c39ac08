// Package results defines the discriminated operation result used by all
// services. A result carries either a success payload or a failure payload;
// infrastructure errors travel separately on the error return.
package results

// OperationResult is the outcome of a service operation. Exactly one of
// Success or Failure is set when the accompanying error is nil.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}

// SuccessResult wraps a success payload.
func SuccessResult[S any, F any](payload S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &payload}
}

// FailureResult wraps a failure payload.
func FailureResult[S any, F any](payload F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &payload}
}

// FailureKind classifies failure payloads across modules.
type FailureKind string

const (
	// FailureAuthentication means the caller identity could not be resolved.
	FailureAuthentication FailureKind = "authentication"
	// FailurePermission means the caller is banned.
	FailurePermission FailureKind = "permission"
	// FailureValidation means the request contradicts itself or its caller.
	FailureValidation FailureKind = "validation"
	// FailureDuplicate means the submission was already recorded. Non-fatal.
	FailureDuplicate FailureKind = "duplicate"
	// FailurePersistence means a store read or write failed.
	FailurePersistence FailureKind = "persistence"
)
