package models

// Role is one of the four fixed account roles on the platform.
type Role string

const (
	RolePlayer     Role = "player"
	RoleMaster     Role = "master"
	RoleSuper      Role = "super"
	RolePowerhouse Role = "powerhouse"
)

// Valid reports whether r is one of the four platform roles.
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleMaster, RoleSuper, RolePowerhouse:
		return true
	}
	return false
}

// Balances holds the role-scoped balance figures reported by the backend.
// Fields that do not apply to the account's role come back as zero.
type Balances struct {
	Main     float64 `json:"main_balance"`
	Bonus    float64 `json:"bonus_balance"`
	PL       float64 `json:"pl_balance"`
	Exposure float64 `json:"exposure"`
	Super    float64 `json:"super_balance,omitempty"`
	Master   float64 `json:"master_balance,omitempty"`
	Player   float64 `json:"player_balance,omitempty"`
}

// UserProfile is the cached account profile. It is mutated only by server
// responses (login, register, refresh), never computed locally.
type UserProfile struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Role        Role     `json:"role"`
	Balances    Balances `json:"balances"`
	Total       float64  `json:"total_balance"`
	KYCStatus   string   `json:"kyc_status"`
	// ParentID is the upstream account this player/master reports to;
	// messages are routed to it.
	ParentID int64  `json:"parent_id"`
	WhatsApp string `json:"whatsapp_number"`
}
