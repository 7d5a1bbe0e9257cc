package models

// Session identifies the acting user and profile. Every gateway call that
// touches owned data takes one explicitly; there is no ambient current user.
type Session struct {
	UserID    string
	ProfileID string
}

func (session Session) IsZero() bool {
	return session.UserID == "" && session.ProfileID == ""
}

// Key is the session's cache-key form. Caches that hold owned data prefix
// their keys with it so one session never hits another's entries.
func (session Session) Key() string {
	return session.UserID + "|" + session.ProfileID
}
