package services

import "errors"

// Sentinel errors returned by the service layer. The messages double as
// the JSON error bodies, so their wording is part of the API contract.
var (
	ErrUnauthorized         = errors.New("Unauthorized")
	ErrNotFound             = errors.New("Not found")
	ErrMalformedCredentials = errors.New("Malformed credentials")
	ErrMissingEmail         = errors.New("Missing email")
	ErrMissingPassword      = errors.New("Missing password")
	ErrAlreadyExists        = errors.New("Already exist")
	ErrMissingName          = errors.New("Missing name")
	ErrInvalidType          = errors.New("Missing type")
	ErrMissingData          = errors.New("Missing data")
	ErrParentNotFound       = errors.New("Parent not found")
	ErrParentNotFolder      = errors.New("Parent is not a folder")
	ErrFolderNoContent      = errors.New("A folder doesn't have content")
	ErrInvalidSize          = errors.New("Invalid size parameter")
)

// IsValidation reports whether err is a request-validation failure that
// should surface as a 400.
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrMalformedCredentials,
		ErrMissingEmail,
		ErrMissingPassword,
		ErrAlreadyExists,
		ErrMissingName,
		ErrInvalidType,
		ErrMissingData,
		ErrParentNotFound,
		ErrParentNotFolder,
		ErrFolderNoContent,
		ErrInvalidSize,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
