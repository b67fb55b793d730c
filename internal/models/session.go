package models

// Session is the authenticated identity of the current user.
// IsAuthenticated is only ever true while Token is non-empty.
type Session struct {
	Token           string `json:"token,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            *User  `json:"user,omitempty"`
}

func (s Session) HasToken() bool {
	return len(s.Token) > 0
}

// Valid reports whether the session satisfies the token/flag invariant
// and is usable for authenticated calls.
func (s Session) Valid() bool {
	return s.IsAuthenticated && s.HasToken()
}
