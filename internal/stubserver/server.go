// Package stubserver implements the platform's consumed REST/WS contract in
// memory, for the SDK's tests and for local development against a backend
// that is otherwise external. It is a fixture: the real backend owns the
// contract.
package stubserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"betpanel-client/internal/models"
)

type Server struct {
	engine *gin.Engine
	store  *store
	tokens *tokenManager
	hub    *hub
}

func New() *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: gin.New(),
		store:  newStore(),
		tokens: newTokenManager("stub-secret", 24*time.Hour),
		hub:    newHub(),
	}

	s.engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	s.engine.Use(cors.New(corsConfig))

	s.routes()
	return s
}

// Handler exposes the router for http.Server and httptest servers.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	v1 := s.engine.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", s.handleLogin)
		auth.POST("/register", s.handleRegister)
		auth.GET("/profile", s.requireAuth, s.handleProfile)

		auth.POST("/forgot-password/search", s.handleRecoverySearch)
		auth.POST("/forgot-password/send-otp", s.handleRecoverySendOTP)
		auth.POST("/forgot-password/verify-reset", s.handleRecoveryReset)

		auth.POST("/signup/check-phone", s.handleCheckPhone)
		auth.POST("/signup/send-otp", s.handleSignupSendOTP)
		auth.POST("/signup/verify-otp", s.handleSignupVerifyOTP)
	}

	msgs := v1.Group("/messages", s.requireAuth)
	{
		msgs.GET("/contacts", s.handleContacts)
		msgs.GET("", s.handleMessages)
		msgs.POST("", s.handleSendMessage)
	}

	modes := v1.Group("/payment-modes", s.requireAuth)
	{
		modes.GET("", s.handlePaymentModes)
		modes.POST("", s.handleCreatePaymentMode)
		modes.PUT("/:id", s.handleUpdatePaymentMode)
		modes.DELETE("/:id", s.handleDeletePaymentMode)
	}

	wallet := v1.Group("/wallet", s.requireAuth)
	{
		wallet.GET("/transactions", s.handleTransactions)
		wallet.POST("/deposit", s.handleDeposit)
		wallet.POST("/withdraw", s.handleWithdraw)
	}

	kyc := v1.Group("/kyc", s.requireAuth)
	{
		kyc.GET("/status", s.handleKYCStatus)
		kyc.POST("/submit", s.handleKYCSubmit)
	}

	games := v1.Group("/games")
	{
		games.GET("", s.handleGames)
		games.GET("/categories", s.handleGameCategories)
		games.GET("/providers", s.handleGameProviders)
		games.POST("/launch", s.requireAuth, s.handleLaunchGame)
	}

	s.engine.GET("/ws", s.handleWS)
}

// requireAuth resolves the bearer token to a user id. Websocket clients that
// cannot set headers may pass ?token= instead.
func (s *Server) requireAuth(c *gin.Context) {
	raw := c.GetHeader("Authorization")
	if len(raw) > 7 && raw[:7] == "Bearer " {
		raw = raw[7:]
	} else {
		raw = c.Query("token")
	}
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing token"})
		return
	}
	userID, err := s.tokens.Parse(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
		return
	}
	s.store.mu.Lock()
	_, ok := s.store.accounts[userID]
	s.store.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "unknown account"})
		return
	}
	c.Set("user_id", userID)
	c.Next()
}

func currentUser(c *gin.Context) int64 {
	id, _ := c.Get("user_id")
	userID, _ := id.(int64)
	return userID
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	s.store.mu.Lock()
	acct := s.store.findByUsername(req.Username)
	s.store.mu.Unlock()
	if acct == nil || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid credentials"})
		return
	}
	token, err := s.tokens.Generate(acct.Profile.ID, acct.Profile.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": acct.Profile})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req models.SignupPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}

	s.store.mu.Lock()
	phone, ok := s.store.signupTokens[req.SignupToken]
	if !ok || phone != req.Phone {
		s.store.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid or expired signup token"})
		return
	}
	delete(s.store.signupTokens, req.SignupToken)
	if s.store.findByPhone(req.Phone) != nil {
		s.store.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"detail": "phone already registered"})
		return
	}
	// New signups join as players under the seeded master.
	master := s.store.findByUsername("master1")
	acct := s.store.createAccount(req.Phone, req.Name, req.Password, req.Phone, models.RolePlayer, master.Profile.ID)
	s.store.mu.Unlock()

	token, err := s.tokens.Generate(acct.Profile.ID, acct.Profile.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "token generation failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": acct.Profile})
}

func (s *Server) handleProfile(c *gin.Context) {
	s.store.mu.Lock()
	acct := s.store.accounts[currentUser(c)]
	profile := acct.Profile
	s.store.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (s *Server) handleRecoverySearch(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	s.store.mu.Lock()
	acct := s.store.findByIdentifier(req.Identifier)
	s.store.mu.Unlock()
	if acct == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "account not found"})
		return
	}
	match := models.IdentityMatch{
		ID:       acct.Profile.ID,
		HasPhone: acct.Phone != "",
		HasEmail: acct.Email != "",
		WhatsApp: acct.Profile.WhatsApp,
	}
	if match.HasPhone {
		match.PhoneMask = maskTail(acct.Phone)
	}
	if match.HasEmail {
		match.EmailMask = maskTail(acct.Email)
	}
	c.JSON(http.StatusOK, gin.H{"data": match})
}

func maskTail(v string) string {
	if len(v) <= 3 {
		return "***"
	}
	return "******" + v[len(v)-3:]
}

func (s *Server) handleRecoverySendOTP(c *gin.Context) {
	var req struct {
		IdentityID int64  `json:"identity_id"`
		Channel    string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	s.store.mu.Lock()
	_, ok := s.store.accounts[req.IdentityID]
	s.store.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "account not found"})
		return
	}
	if req.Channel != "phone" && req.Channel != "email" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unknown channel"})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleRecoveryReset(c *gin.Context) {
	var req struct {
		IdentityID  int64  `json:"identity_id"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	if req.OTP != FixedOTP {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid or expired OTP"})
		return
	}
	if len(req.NewPassword) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "password too short"})
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	acct, ok := s.store.accounts[req.IdentityID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "account not found"})
		return
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	acct.PasswordHash = hash
	c.Status(http.StatusOK)
}

func (s *Server) handleCheckPhone(c *gin.Context) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	s.store.mu.Lock()
	exists := s.store.findByPhone(req.Phone) != nil
	s.store.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (s *Server) handleSignupSendOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleSignupVerifyOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	if req.OTP != FixedOTP {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid or expired OTP"})
		return
	}
	token := uuid.New().String()
	s.store.mu.Lock()
	s.store.signupTokens[token] = req.Phone
	s.store.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"signup_token": token})
}

// handleContacts returns the upline parent plus direct downline accounts,
// which is who the platform lets an account message.
func (s *Server) handleContacts(c *gin.Context) {
	userID := currentUser(c)
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	self := s.store.accounts[userID]
	var contacts []models.Contact
	appendContact := func(acct *account) {
		unread := 0
		for _, m := range s.store.messages {
			if m.SenderID == acct.Profile.ID && m.ReceiverID == userID && !m.Read {
				unread++
			}
		}
		contacts = append(contacts, models.Contact{
			ID:          acct.Profile.ID,
			Username:    acct.Profile.Username,
			DisplayName: acct.Profile.DisplayName,
			Role:        acct.Profile.Role,
			Unread:      unread,
		})
	}
	if parent, ok := s.store.accounts[self.Profile.ParentID]; ok {
		appendContact(parent)
	}
	for _, acct := range s.store.accounts {
		if acct.Profile.ParentID == userID {
			appendContact(acct)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": contacts})
}

func (s *Server) handleMessages(c *gin.Context) {
	partner, err := strconv.ParseInt(c.Query("partner"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid partner"})
		return
	}
	userID := currentUser(c)
	s.store.mu.Lock()
	conv := s.store.conversation(userID, partner)
	// Fetching a conversation marks its inbound messages read.
	for i := range s.store.messages {
		if s.store.messages[i].SenderID == partner && s.store.messages[i].ReceiverID == userID {
			s.store.messages[i].Read = true
		}
	}
	s.store.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": conv})
}

func (s *Server) handleSendMessage(c *gin.Context) {
	var req struct {
		Receiver   int64  `json:"receiver"`
		Body       string `json:"body"`
		Attachment string `json:"attachment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	userID := currentUser(c)
	s.store.mu.Lock()
	if _, ok := s.store.accounts[req.Receiver]; !ok {
		s.store.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"detail": "receiver not found"})
		return
	}
	msg := s.store.addMessage(userID, req.Receiver, req.Body, req.Attachment)
	s.store.mu.Unlock()

	s.hub.pushMessage(msg)
	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

func (s *Server) handlePaymentModes(c *gin.Context) {
	s.store.mu.Lock()
	modes := append([]models.PaymentMode{}, s.store.paymentModes[currentUser(c)]...)
	s.store.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": modes})
}

func (s *Server) handleCreatePaymentMode(c *gin.Context) {
	var mode models.PaymentMode
	if err := c.ShouldBindJSON(&mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	userID := currentUser(c)
	s.store.mu.Lock()
	mode.ID = s.store.nextID
	s.store.nextID++
	s.store.paymentModes[userID] = append(s.store.paymentModes[userID], mode)
	s.store.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"data": mode})
}

func (s *Server) handleUpdatePaymentMode(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid id"})
		return
	}
	var mode models.PaymentMode
	if err := c.ShouldBindJSON(&mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	userID := currentUser(c)
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for i, existing := range s.store.paymentModes[userID] {
		if existing.ID == id {
			mode.ID = id
			s.store.paymentModes[userID][i] = mode
			c.Status(http.StatusOK)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "payment mode not found"})
}

func (s *Server) handleDeletePaymentMode(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid id"})
		return
	}
	userID := currentUser(c)
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	modes := s.store.paymentModes[userID]
	for i, existing := range modes {
		if existing.ID == id {
			s.store.paymentModes[userID] = append(modes[:i], modes[i+1:]...)
			c.Status(http.StatusOK)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "payment mode not found"})
}

func (s *Server) handleTransactions(c *gin.Context) {
	s.store.mu.Lock()
	txs := append([]models.Transaction{}, s.store.transactions[currentUser(c)]...)
	s.store.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": txs})
}

// handleDeposit accepts both the JSON variant and the multipart variant with
// a payment screenshot, like the real backend.
func (s *Server) handleDeposit(c *gin.Context) {
	var amount float64
	var remark string

	if c.ContentType() == "application/json" {
		var req struct {
			Amount float64 `json:"amount"`
			Remark string  `json:"remark"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
			return
		}
		amount, remark = req.Amount, req.Remark
	} else {
		parsed, err := strconv.ParseFloat(c.PostForm("amount"), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid amount"})
			return
		}
		if _, err := c.FormFile("screenshot"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "screenshot is required"})
			return
		}
		amount, remark = parsed, c.PostForm("remark")
	}
	if amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "amount must be positive"})
		return
	}

	userID := currentUser(c)
	s.store.mu.Lock()
	s.store.transactions[userID] = append(s.store.transactions[userID], models.Transaction{
		ID:        s.store.nextID,
		Type:      "deposit",
		Amount:    amount,
		Status:    "pending",
		Remark:    remark,
		CreatedAt: time.Now().UTC(),
	})
	s.store.nextID++
	s.store.mu.Unlock()
	c.Status(http.StatusCreated)
}

func (s *Server) handleWithdraw(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid amount"})
		return
	}
	userID := currentUser(c)
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.store.kyc[userID].Status != "approved" {
		c.JSON(http.StatusForbidden, gin.H{"detail": "KYC approval required before withdrawal"})
		return
	}
	s.store.transactions[userID] = append(s.store.transactions[userID], models.Transaction{
		ID:        s.store.nextID,
		Type:      "withdraw",
		Amount:    req.Amount,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	})
	s.store.nextID++
	c.Status(http.StatusCreated)
}

func (s *Server) handleKYCStatus(c *gin.Context) {
	s.store.mu.Lock()
	status := s.store.kyc[currentUser(c)]
	s.store.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": status})
}

func (s *Server) handleKYCSubmit(c *gin.Context) {
	if c.PostForm("document_type") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "document_type is required"})
		return
	}
	if _, err := c.FormFile("document_front"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "document_front is required"})
		return
	}
	s.store.mu.Lock()
	s.store.kyc[currentUser(c)] = models.KYCStatus{Status: "submitted"}
	s.store.mu.Unlock()
	c.Status(http.StatusOK)
}

var stubGames = []models.Game{
	{ID: "g1", Name: "Teen Patti", CategoryID: "cards", ProviderID: "p1", Featured: true},
	{ID: "g2", Name: "Andar Bahar", CategoryID: "cards", ProviderID: "p1"},
	{ID: "g3", Name: "Crash", CategoryID: "instant", ProviderID: "p2", Featured: true},
}

func (s *Server) handleGames(c *gin.Context) {
	category := c.Query("category")
	provider := c.Query("provider")
	var out []models.Game
	for _, g := range stubGames {
		if category != "" && g.CategoryID != category {
			continue
		}
		if provider != "" && g.ProviderID != provider {
			continue
		}
		out = append(out, g)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) handleGameCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": []models.GameCategory{
		{ID: "cards", Name: "Card Games"},
		{ID: "instant", Name: "Instant Games"},
	}})
}

func (s *Server) handleGameProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": []models.GameProvider{
		{ID: "p1", Name: "Ace Studios"},
		{ID: "p2", Name: "Rocket Play"},
	}})
}

func (s *Server) handleLaunchGame(c *gin.Context) {
	var req struct {
		GameID string `json:"game_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid payload"})
		return
	}
	for _, g := range stubGames {
		if g.ID == req.GameID {
			c.JSON(http.StatusOK, gin.H{"data": models.GameLaunch{
				URL:      "https://games.example.com/launch/" + g.ID,
				Embedded: g.CategoryID == "instant",
			}})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "game not found"})
}

// handleWS upgrades to the push channel. Inbound frames are drained and
// ignored; the stub only pushes message.new events.
func (s *Server) handleWS(c *gin.Context) {
	raw := c.GetHeader("Authorization")
	if len(raw) > 7 && raw[:7] == "Bearer " {
		raw = raw[7:]
	} else {
		raw = c.Query("token")
	}
	userID, err := s.tokens.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.hub.add(userID, conn)
	go func() {
		defer func() {
			s.hub.remove(userID, conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
