package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrAccountDisabled = errors.New("account has been disabled")
var ErrTooManyAttempts = errors.New("too many failed attempts, try again later")
var ErrAccountLocked = errors.New("account temporarily locked after repeated failures")
var ErrAuthUnavailable = errors.New("authentication service unreachable")
var ErrLinkExpired = errors.New("feedback link has expired")
var ErrInvalidPhone = errors.New("phone number is not a valid Indian mobile number")

// ErrOrderDelivered indicates a mutation that is not allowed once an order
// has reached its terminal delivered state.
var ErrOrderDelivered = errors.New("order already delivered")
