package user

import "errors"

var (
	ErrInvalidToken      = errors.New("invalid or missing access token")
	ErrAccessDenied      = errors.New("you are not allowed to perform this action")
	ErrCompanyIDRequired = errors.New("company ID is required")
)
