package services

import "errors"

// Error kinds surfaced to callers. Underlying store errors never leak into
// the message of a kind; they are kept as the Cause of an InvitationError.
var (
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrInvalidInput         = errors.New("invalid input")
	ErrCompanyNotConfigured = errors.New("company not configured")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrAlreadyMember        = errors.New("user is already a member of this company")
	ErrInvitationPending    = errors.New("user already has a pending invitation")
	ErrUnexpected           = errors.New("unexpected failure")
)

// InvitationError carries one of the error kinds above plus the failure that
// caused it, if any. Error() reports the kind only.
type InvitationError struct {
	Kind  error
	Cause error
}

func (e *InvitationError) Error() string {
	return e.Kind.Error()
}

func (e *InvitationError) Unwrap() error {
	return e.Kind
}

func newInvitationError(kind, cause error) *InvitationError {
	return &InvitationError{Kind: kind, Cause: cause}
}

// UserMessage returns the copy shown to an end user for err
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "Please sign in to continue"
	case errors.Is(err, ErrInvalidInput):
		return "Please fill in all required fields"
	case errors.Is(err, ErrCompanyNotConfigured):
		return "Please set up your company first"
	case errors.Is(err, ErrNotAuthorized):
		return "Only admins can invite new users"
	case errors.Is(err, ErrAlreadyMember):
		return "This user is already part of your company"
	case errors.Is(err, ErrInvitationPending):
		return "This user already has a pending invitation"
	default:
		return "Failed to add user. Please try again."
	}
}

// ErrorCode returns a stable machine-readable code for err
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrCompanyNotConfigured):
		return "COMPANY_NOT_CONFIGURED"
	case errors.Is(err, ErrNotAuthorized):
		return "NOT_AUTHORIZED"
	case errors.Is(err, ErrAlreadyMember):
		return "ALREADY_MEMBER"
	case errors.Is(err, ErrInvitationPending):
		return "INVITATION_PENDING"
	default:
		return "UNEXPECTED_FAILURE"
	}
}
