package domain

import "errors"

// Sentinel errors returned by use cases and repositories. The HTTP layer
// maps them to status codes; everything else surfaces as a 500.

// Invalid input and failed preconditions.
var (
	ErrInvalidCode    = errors.New("invalid verification code")
	ErrSelfMatch      = errors.New("cannot send match request to yourself")
	ErrAlreadyInGroup = errors.New("user is already in an active group")
	ErrTargetInGroup  = errors.New("target user is already in an active group")
	ErrRequestExists  = errors.New("a pending match request already exists between these users")
)

// State conflicts.
var (
	ErrEmailTaken        = errors.New("email already registered")
	ErrAlreadyVerified   = errors.New("email already verified")
	ErrRequestNotPending = errors.New("match request is no longer pending")
)

// Missing or invisible resources.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRequestNotFound = errors.New("match request not found")
	ErrGroupNotFound   = errors.New("group not found")
)

// Authentication and authorization failures.
var (
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotGroupMember     = errors.New("not a member of this group")
)
