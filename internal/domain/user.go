package domain

// TokenPair is the access/refresh credential pair issued at login. The access
// token authorizes requests; the refresh token only mints new access tokens.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Profile holds extended account fields nested under the user payload.
type Profile struct {
	Phone   string `json:"phone,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
	County  string `json:"county,omitempty"`
	Address string `json:"address,omitempty"`
}

// UserProfile is the authenticated identity as returned by the profile endpoint.
type UserProfile struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Profile   *Profile `json:"profile,omitempty"`
}

// FullName returns the user's display name.
func (u *UserProfile) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
