package httperr

import (
	"errors"
	"net/http"
)

// BusinessError is a rule violation identified only by its code. Status
// defaults to 400 when zero.
type BusinessError struct {
	Code   string
	Status int
}

func (e BusinessError) Error() string {
	return e.Code
}

func (e BusinessError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// ErrUnprocessable is a business error for a well-formed request that
// cannot be applied to the current state.
func ErrUnprocessable(code string) error {
	return BusinessError{Code: code, Status: http.StatusUnprocessableEntity}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
