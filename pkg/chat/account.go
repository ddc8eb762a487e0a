package chat

// Account is the logged in user as returned by the auth endpoint
type Account struct {
	ID            ID       `json:"id"`
	Email         string   `json:"email,omitempty"`
	UserName      string   `json:"userName,omitempty"`
	CreditBalance int      `json:"creditBalance"`
	Profile       *Profile `json:"user_profile,omitempty"`
}

// Type returns the role of the account, defaulting to Seer without a profile
func (a Account) Type() UserType {
	if a.Profile == nil {
		return Seer
	}
	return UserTypeFromProfile(a.Profile.UserType)
}
