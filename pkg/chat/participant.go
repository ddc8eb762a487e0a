package chat

// UserType is the role a logged in user plays in the marketplace
type UserType string

const (
	Seer   UserType = "SEER"
	Client UserType = "CLIENT"
	Admin  UserType = "ADMIN"
)

// UserTypeFromProfile maps the numeric user_type of a profile to a role.
// Unknown values fall back to Seer, matching the backend default.
func UserTypeFromProfile(userType int) UserType {
	switch userType {
	case 1:
		return Client
	case 3:
		return Admin
	default:
		return Seer
	}
}

// Profile is the nested user_profile object
type Profile struct {
	Avatar      string `json:"avatar,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	UserType    int    `json:"user_type,omitempty"`
}

// Participant is a counterpart in a chat, either a seer or a client
type Participant struct {
	ID                 ID       `json:"id"`
	User               ID       `json:"user,omitempty"`
	Email              string   `json:"email,omitempty"`
	UserName           string   `json:"userName,omitempty"`
	Name               string   `json:"name,omitempty"`
	Avatar             string   `json:"avatar,omitempty"`
	Bio                string   `json:"bio,omitempty"`
	Description        string   `json:"description,omitempty"`
	PhoneNumber        string   `json:"phoneNumber,omitempty"`
	UnreadMessageCount int      `json:"unread_message_count,omitempty"`
	LastMessage        string   `json:"last_message,omitempty"`
	LastAction         string   `json:"last_action,omitempty"`
	Profile            *Profile `json:"user_profile,omitempty"`
}

// DisplayName picks the most readable name available
func (p Participant) DisplayName() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.UserName != "":
		return p.UserName
	case p.Email != "":
		return p.Email
	default:
		return p.ID.String()
	}
}

// Identity describes who is using the client. Seers managing several profiles
// act on behalf of ActingSeer, whose user id also counts as "self".
type Identity struct {
	UserID     ID
	ActingSeer *Participant
	Type       UserType
}

// SenderID is the id outgoing messages are attributed to
func (i Identity) SenderID() ID {
	if i.ActingSeer != nil && !i.ActingSeer.ID.IsZero() {
		return i.ActingSeer.ID
	}
	return i.UserID
}

// SeerUserID is the seer account used in seer-side endpoints
func (i Identity) SeerUserID() ID {
	if i.ActingSeer != nil && !i.ActingSeer.User.IsZero() {
		return i.ActingSeer.User
	}
	return i.UserID
}

// IsSelf reports whether a sender id belongs to the current user
func (i Identity) IsSelf(sender ID) bool {
	if sender.IsZero() {
		return false
	}
	if sender == i.UserID {
		return true
	}
	if i.ActingSeer != nil {
		return sender == i.ActingSeer.User || sender == i.ActingSeer.ID
	}
	return false
}
