package model

// Result is the uniform envelope every catalog call resolves to.
// Failures never propagate as errors past the catalog boundary; they become
// Success=false with a derived Message instead.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail converts err into a failed envelope with the derived reason.
func Fail[T any](err error) Result[T] {
	return Result[T]{Message: Reason(err)}
}

// Notice returns the user-facing connection notice for a failed envelope,
// or "" on success.
func (r Result[T]) Notice() string {
	if r.Success {
		return ""
	}
	return r.Message
}
