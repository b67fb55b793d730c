package models

// User is the profile returned by the reader service. It is only used
// for display and never gates anything.
type User struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Email  string `json:"email,omitempty" yaml:"email,omitempty"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

func (u *User) GetName() string {
	if u == nil {
		return "Unknown"
	}
	if len(u.Name) > 0 {
		return u.Name
	} else if len(u.Email) > 0 {
		return u.Email
	} else if len(u.ID) > 0 {
		return u.ID
	}
	return "Unknown"
}

// Clone returns a copy so snapshots never share the profile pointer.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
