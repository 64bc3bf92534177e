package rules

import "errors"

var (
	// ErrNotHolder means the acting reviewer does not hold the live
	// claim on the item.
	ErrNotHolder = errors.New("reviewer does not hold the claim")
	// ErrNotAuthorized means the acting reviewer's role does not permit
	// the operation.
	ErrNotAuthorized = errors.New("role not authorized for operation")
	// ErrReasonRequired means a resolution was attempted without a
	// reason code.
	ErrReasonRequired = errors.New("resolution reason is required")
	// ErrDomainEffectFailed means the status change was recorded but a
	// downstream side effect did not complete.
	ErrDomainEffectFailed = errors.New("domain side effect failed")
)
