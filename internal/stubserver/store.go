package stubserver

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"betpanel-client/internal/models"
)

// FixedOTP is the code every stub OTP send "delivers". Tests and local
// development submit it instead of reading a phone.
const FixedOTP = "123456"

type account struct {
	Profile      models.UserProfile
	PasswordHash []byte
	Phone        string
	Email        string
}

// store is the stub's in-memory state. Deliberately no database: tests stay
// hermetic and a fresh store starts from the same seeded upline every time.
type store struct {
	mu           sync.Mutex
	accounts     map[int64]*account
	messages     []models.Message
	paymentModes map[int64][]models.PaymentMode
	transactions map[int64][]models.Transaction
	kyc          map[int64]models.KYCStatus
	signupTokens map[string]string // signup token -> verified phone
	nextID       int64
}

func newStore() *store {
	s := &store{
		accounts:     make(map[int64]*account),
		paymentModes: make(map[int64][]models.PaymentMode),
		transactions: make(map[int64][]models.Transaction),
		kyc:          make(map[int64]models.KYCStatus),
		signupTokens: make(map[string]string),
		nextID:       1,
	}
	s.seed()
	return s
}

// seed creates one account per role, chained powerhouse → super → master →
// player, all with password "secret123".
func (s *store) seed() {
	chain := []struct {
		username string
		role     models.Role
		phone    string
		whatsapp string
	}{
		{"power1", models.RolePowerhouse, "9800000001", "+9779800000001"},
		{"super1", models.RoleSuper, "9800000002", ""},
		{"master1", models.RoleMaster, "9800000003", "+9779800000003"},
		{"player1", models.RolePlayer, "9800000004", ""},
	}
	var parent int64
	for _, c := range chain {
		acct := s.createAccount(c.username, c.username, "secret123", c.phone, c.role, parent)
		acct.Profile.WhatsApp = c.whatsapp
		parent = acct.Profile.ID
	}
}

func (s *store) createAccount(username, name, password, phone string, role models.Role, parentID int64) *account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	id := s.nextID
	s.nextID++
	acct := &account{
		Profile: models.UserProfile{
			ID:          id,
			Username:    username,
			DisplayName: name,
			Role:        role,
			Balances:    models.Balances{Main: 1000},
			Total:       1000,
			KYCStatus:   "pending",
			ParentID:    parentID,
		},
		PasswordHash: hash,
		Phone:        phone,
	}
	s.accounts[id] = acct
	s.kyc[id] = models.KYCStatus{Status: "pending"}
	return acct
}

func (s *store) findByUsername(username string) *account {
	for _, acct := range s.accounts {
		if acct.Profile.Username == username {
			return acct
		}
	}
	return nil
}

func (s *store) findByPhone(phone string) *account {
	for _, acct := range s.accounts {
		if acct.Phone == phone {
			return acct
		}
	}
	return nil
}

func (s *store) findByIdentifier(identifier string) *account {
	identifier = strings.TrimSpace(identifier)
	for _, acct := range s.accounts {
		if acct.Profile.Username == identifier || acct.Phone == identifier || (acct.Email != "" && acct.Email == identifier) {
			return acct
		}
	}
	return nil
}

func (s *store) addMessage(sender, receiver int64, body, attachment string) models.Message {
	msg := models.Message{
		ID:         uuid.New().String(),
		SenderID:   sender,
		ReceiverID: receiver,
		Body:       body,
		Attachment: attachment,
		CreatedAt:  time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	return msg
}

func (s *store) conversation(a, b int64) []models.Message {
	var out []models.Message
	for _, m := range s.messages {
		if m.Between(a, b) {
			out = append(out, m)
		}
	}
	return out
}
