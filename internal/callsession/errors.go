package callsession

import "errors"

// ErrorKind classifies why a call could not start
type ErrorKind string

const (
	PermissionDenied      ErrorKind = "permission_denied"
	CredentialFetchFailed ErrorKind = "credential_fetch_failed"
	SessionStartFailed    ErrorKind = "session_start_failed"
)

var (
	// ErrCallInProgress rejects StartCall while a call is connecting or live
	ErrCallInProgress = errors.New("call already in progress")
	// ErrUnmounted is returned once the controller has been torn down
	ErrUnmounted = errors.New("call controller unmounted")
	// ErrCallEnded is returned by StartCall when EndCall hangs up before the start completes
	ErrCallEnded = errors.New("call ended before it connected")
	// ErrMissingCredential is used when the credential source answers with an empty URL.
	// It is the only place this condition becomes an error.
	ErrMissingCredential = errors.New("Failed to get connection token")
)

// Toast copy
const (
	toastVariant           = "destructive"
	callFailedTitle        = "Call Failed"
	callFailedFallback     = "Could not start the call. Please check microphone permissions."
	connectionErrorTitle   = "Connection Error"
	connectionErrorMessage = "Failed to connect. Please try again."
)

// CallError is a classified StartCall failure
type CallError struct {
	Kind ErrorKind
	Err  error
}

func (e *CallError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a CallError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var ce *CallError
	return errors.As(err, &ce) && ce.Kind == kind
}
