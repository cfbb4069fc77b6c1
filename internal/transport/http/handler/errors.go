package handler

const (
	errInternalServer     = "Internal server error"
	errServiceUnavailable = "Service unavailable"
	errUserNotFound       = "User not found"
	errMissingFields      = "Name and email are required"
)
