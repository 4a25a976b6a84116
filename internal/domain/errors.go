package domain

// ErrorKind classifies a failure so the transport layer can pick a status
// code without inspecting messages.
type ErrorKind int

const (
	KindInvalidArgument ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindAlreadyExists
)

// Error carries a kind and a user-facing message. Two Errors match under
// errors.Is when their kinds are equal and the target's message is either
// empty or identical, so sentinels below work with errors.Is while
// kind-only targets can match any message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func InvalidArgument(msg string) *Error { return &Error{Kind: KindInvalidArgument, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func AlreadyExists(msg string) *Error { return &Error{Kind: KindAlreadyExists, Message: msg} }

// Auth errors
var (
	ErrEmailExists        = AlreadyExists("User with email already exists")
	ErrInvalidCredentials = Unauthorized("Invalid Login Credentials")
	ErrUserNotFound       = NotFound("User not found")
	ErrUserDeactivated    = Forbidden("User has been deactivated")
	ErrInvalidAuthHeader  = Unauthorized("Invalid token")
	ErrRefreshNotFound    = Unauthorized("Refresh token not found")
	ErrRefreshExpired     = Unauthorized("Refresh token has expired")
)

// Token verification errors
var (
	ErrInvalidToken        = Unauthorized("Invalid Token")
	ErrAccessTokenExpired  = Unauthorized("Access Token has expired")
	ErrTokenTypeInvalid    = Unauthorized("Token type is invalid")
	ErrInvalidRefreshToken = Unauthorized("Invalid Refresh Token")
)
