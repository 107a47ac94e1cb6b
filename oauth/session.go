package oauth

// SessionState tags the variant a Session currently holds.
type SessionState int

const (
	SessionUnauthenticated SessionState = iota
	SessionAuthorizing
	SessionAuthenticated
	SessionExpired
	SessionFailed
)

// Session is the tagged OAuth session state exposed by Client.GetSession.
// Only the fields relevant to the current State are populated.
type Session struct {
	State SessionState
	Stage string // set when State == SessionAuthorizing: the pending state parameter
	DID   string // set when State == SessionAuthenticated
	Err   error  // set when State == SessionFailed
}

// IsAuthenticated reports whether the session's tag is Authenticated.
func (s Session) IsAuthenticated() bool { return s.State == SessionAuthenticated }
