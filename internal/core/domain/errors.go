package domain

import "errors"

var (
	ErrValidation          = errors.New("invalid input")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrForbidden           = errors.New("access forbidden")
	ErrPackageNotFound     = errors.New("package not found")
	ErrTravelNotFound      = errors.New("travel not found")
	ErrTravelConflict      = errors.New("traveler already has an upcoming travel")
	ErrNoActiveTravel      = errors.New("traveler has no active upcoming travel")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrLocalNotFound       = errors.New("local not found")
	ErrLocalExists         = errors.New("local already exists")
	ErrPermissionNotFound  = errors.New("permission not found")
	ErrPermissionExists    = errors.New("permission already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrImageNotFound       = errors.New("image not found")
)
