package validation

import "errors"

// Result is the outcome of a validator. Reason is user-displayable and is set
// only when Valid is false.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	err    error
}

// Ok is a passing result.
func Ok() Result {
	return Result{Valid: true}
}

// Fail builds a failing result whose reason is err's message.
func Fail(err error) Result {
	if err == nil {
		err = ErrInvalid
	}
	return Result{Valid: false, Reason: err.Error(), err: err}
}

// Err returns nil for a valid result and the sentinel behind Reason otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	if r.Reason != "" {
		return errors.New(r.Reason)
	}
	return ErrInvalid
}
