package auth

import "errors"

// Auth failures map onto the identity provider's error codes; they are
// always translated to human text before display, and retry is allowed.
var (
	ErrWrongPassword   = errors.New("auth/wrong-password")
	ErrUserNotFound    = errors.New("auth/user-not-found")
	ErrTooManyAttempts = errors.New("auth/too-many-requests")
	ErrInvalidEmail    = errors.New("auth/invalid-email")
)

// Translate converts an auth error into the message shown on the login
// form.
func Translate(err error) string {
	switch {
	case errors.Is(err, ErrWrongPassword):
		return "Incorrect password. Please try again."
	case errors.Is(err, ErrUserNotFound):
		return "No account found with this email."
	case errors.Is(err, ErrTooManyAttempts):
		return "Too many failed attempts. Please wait and try again."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	default:
		return "An error occurred during login. Please try again."
	}
}
