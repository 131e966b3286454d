// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios. For example, ErrForbidden indicates that the current
// account is not authorized to mutate a resource owned by someone
// else, while ErrDuplicateReview signals that the one-review-per-
// account-per-vehicle rule would be violated.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into a
// redirect with a notice (HTML flow) or an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateReview is returned when an account already has a review
// for the vehicle it is trying to review again. The database unique
// index is the authoritative source of this error.
var ErrDuplicateReview = errors.New("duplicate review")

// ErrEmailExists is returned when registering an account whose email
// address is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrAccountNotFound is returned when an account lookup matches no row.
var ErrAccountNotFound = errors.New("account not found")

// ErrVehicleNotFound is returned when an inventory lookup matches no row.
var ErrVehicleNotFound = errors.New("vehicle not found")

// ErrClassificationNotFound is returned when a classification lookup
// matches no row.
var ErrClassificationNotFound = errors.New("classification not found")

// ErrClassificationExists is returned when adding a classification whose
// name is already taken.
var ErrClassificationExists = errors.New("classification already exists")

// ErrReviewNotFound is returned when a review lookup matches no row.
var ErrReviewNotFound = errors.New("review not found")
