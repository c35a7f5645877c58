package campusnet

import "errors"

var (
	// the login response carried no redirect directive
	ErrLoginRejected = errors.New("login rejected by portal")
	// the redirect target did not contain a session token
	ErrNoToken = errors.New("could not extract session token")
	// the redirect chain exceeded its hop limit
	ErrRedirectLoop = errors.New("redirect chain did not terminate")
	// a page was neither an intermediate redirect nor the home page
	ErrUnrecognizedPage = errors.New("unrecognized portal page")
	// another re-authentication attempt is already in flight
	ErrReauthInFlight = errors.New("re-authentication already in progress")
	// no credentials stored, login has to happen first
	ErrNotAuthenticated = errors.New("not authenticated")
	// the portal answered with its session-expired page
	ErrSessionExpired = errors.New("session expired")
)
