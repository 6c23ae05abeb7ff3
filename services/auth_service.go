package services

import (
	"context"
	"errors"
	"fmt"
	"stock-app/apperror"
	"stock-app/models"
	"stock-app/repositories"
	"stock-app/types"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	LoginStatusSuccess = "SUCCESS"
	LoginStatusFailed  = "FAILED"

	RegistrationAutoApproved    = "auto-approved"
	RegistrationPendingApproval = "pending-approval"

	pendingApprovalMessage = "Registration submitted for approval. You will be notified once an administrator reviews your request."
)

// Claims is the payload of every access token.
type Claims struct {
	UserID    uint           `json:"user_id"`
	SessionID string         `json:"session_id"`
	Roles     types.RoleList `json:"roles"`
	jwt.RegisteredClaims
}

// ClientInfo describes the device a login comes from.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// Describe guesses browser, OS and device class from the user agent.
func (c ClientInfo) Describe() (browser, os, device string) {
	ua := strings.ToLower(c.UserAgent)

	switch {
	case strings.Contains(ua, "edg/"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Unknown"
	}

	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Unknown"
	}

	if strings.Contains(ua, "mobile") {
		device = "MOBILE"
	} else {
		device = "DESKTOP"
	}
	return
}

type AuthService struct {
	db     *gorm.DB
	log    *zap.Logger
	secret []byte
	ttl    time.Duration
}

func NewAuthService(db *gorm.DB, log *zap.Logger, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{db: db, log: log, secret: []byte(secret), ttl: ttl}
}

type LoginResult struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Login checks the credentials and opens a session. Every attempt leaves a
// LoginLog row, successful or not.
func (s *AuthService) Login(ctx context.Context, login, password string, client ClientInfo) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperror.Validation("username and password are required", map[string]string{
			"username": "required",
			"password": "required",
		})
	}

	db := s.db.WithContext(ctx)
	user, err := repositories.NewUserRepository(db).GetByLogin(login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.recordFailure(db, login, nil, "USER_NOT_FOUND", client)
		return nil, apperror.Auth("invalid username or password")
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		s.recordFailure(db, login, &user.ID, "WRONG_PASSWORD", client)
		return nil, apperror.Auth("invalid username or password")
	}
	if !user.IsActive() {
		s.recordFailure(db, login, &user.ID, "ACCOUNT_"+strings.ToUpper(user.Status), client)
		return nil, apperror.Auth("account is " + user.Status)
	}

	var result *LoginResult
	err = withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		result, err = s.openSession(tx, user, client)
		if err != nil {
			return err
		}
		return repositories.NewUserRepository(tx).UpdateColumns(user.ID, map[string]interface{}{"last_login_at": now()})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("username", user.Username), zap.String("ip", client.IP))
	return result, nil
}

func (s *AuthService) recordFailure(db *gorm.DB, login string, userID *uint, reason string, client ClientInfo) {
	browser, os, device := client.Describe()
	at := now()
	entry := &models.LoginLog{
		SessionID:     uuid.NewString(),
		Username:      login,
		UserID:        userID,
		LoginAt:       &at,
		IPAddress:     client.IP,
		UserAgent:     client.UserAgent,
		Browser:       browser,
		OS:            os,
		DeviceType:    device,
		LoginStatus:   LoginStatusFailed,
		FailureReason: &reason,
	}
	if err := repositories.NewSessionRepository(db).CreateLoginLog(entry); err != nil {
		s.log.Error("failed to write login log", zap.Error(err))
	}
	s.log.Warn("login failed", zap.String("username", login), zap.String("reason", reason), zap.String("ip", client.IP))
}

// openSession stores a new session for user and signs its token.
func (s *AuthService) openSession(tx *gorm.DB, user *models.User, client ClientInfo) (*LoginResult, error) {
	browser, os, device := client.Describe()
	issued := now()
	expires := issued.Add(s.ttl)
	sessionID := uuid.NewString()

	repo := repositories.NewSessionRepository(tx)
	session := &models.UserSession{
		SessionID:      sessionID,
		UserID:         user.ID,
		IPAddress:      client.IP,
		UserAgent:      client.UserAgent,
		DeviceID:       device,
		IsActive:       true,
		LastActivityAt: issued,
		ExpiresAt:      expires,
	}
	if err := repo.Create(session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	err := repo.CreateLoginLog(&models.LoginLog{
		SessionID:   sessionID,
		Username:    user.Username,
		UserID:      &user.ID,
		LoginAt:     &issued,
		IPAddress:   client.IP,
		UserAgent:   client.UserAgent,
		Browser:     browser,
		OS:          os,
		DeviceType:  device,
		LoginStatus: LoginStatusSuccess,
	})
	if err != nil {
		return nil, fmt.Errorf("write login log: %w", err)
	}

	token, err := s.sign(user, sessionID, issued, expires)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user, ExpiresAt: expires}, nil
}

func (s *AuthService) sign(user *models.User, sessionID string, issued, expires time.Time) (string, error) {
	claims := Claims{
		UserID:    user.ID,
		SessionID: sessionID,
		Roles:     user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates the signature and expiry of a bearer token.
func (s *AuthService) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.Auth("invalid or expired token")
	}
	return claims, nil
}

// Authenticate resolves a bearer token to its user and live session and
// records the activity on the session.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, *models.UserSession, error) {
	claims, err := s.ParseToken(raw)
	if err != nil {
		return nil, nil, err
	}

	db := s.db.WithContext(ctx)
	sessions := repositories.NewSessionRepository(db)
	session, err := sessions.GetActive(claims.SessionID, now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperror.Auth("session is no longer active")
	}
	if err != nil {
		return nil, nil, err
	}
	if session.UserID != claims.UserID {
		return nil, nil, apperror.Auth("session does not belong to this token")
	}

	user, err := repositories.NewUserRepository(db).GetByID(claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperror.Auth("user no longer exists")
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive() {
		return nil, nil, apperror.Auth("account is " + user.Status)
	}

	if err := sessions.Touch(session.ID, now()); err != nil {
		s.log.Warn("failed to touch session", zap.String("session_id", session.SessionID), zap.Error(err))
	}
	return user, session, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	db := s.db.WithContext(ctx)
	repo := repositories.NewSessionRepository(db)

	at := now()
	rows, err := repo.Deactivate(sessionID, at)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperror.Auth("session is no longer active")
	}
	if err := repo.MarkLogout(sessionID, at); err != nil {
		s.log.Warn("no login log to close", zap.String("session_id", sessionID), zap.Error(err))
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := repositories.NewUserRepository(s.db.WithContext(ctx)).GetByID(userID)
	if err != nil {
		return nil, apperror.Wrap(err, "user")
	}
	return user, nil
}

type RegisterRequest struct {
	Username     string   `json:"username" validate:"required,min=3,max=100"`
	Email        string   `json:"email" validate:"required,email,max=200"`
	Password     string   `json:"password" validate:"required,min=8,max=72"`
	Name         string   `json:"name" validate:"required,max=200"`
	Roles        []string `json:"roles" validate:"required,min=1"`
	DepartmentID *uint    `json:"department_id"`
}

type RegisterResult struct {
	Status        string       `json:"status"`
	Message       string       `json:"message"`
	Token         string       `json:"token,omitempty"`
	User          *models.User `json:"user,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
	PendingUserID *uint        `json:"pending_user_id,omitempty"`
}

// Register creates a staff account straight away. Any request for admin or
// stock_manager is parked as a PendingUser until an admin reviews it.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, client ClientInfo) (*RegisterResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	roles := types.RoleList(req.Roles).Normalize()
	if len(roles) == 0 {
		return nil, apperror.Validation("at least one role is required", map[string]string{"roles": "required"})
	}
	if bad := roles.Invalid(); len(bad) > 0 {
		return nil, apperror.Validation("unknown role: "+strings.Join(bad, ", "), map[string]string{"roles": "oneof"})
	}
	if len(req.Password) < 8 {
		return nil, apperror.Validation("password must be at least 8 characters", map[string]string{"password": "min"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var result *RegisterResult
	err = withTx(ctx, s.db, func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		taken, err := users.IdentityTaken(req.Username, req.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("username or email is already registered")
		}
		if req.DepartmentID != nil {
			if _, err := repositories.NewDepartmentRepository(tx).GetByID(*req.DepartmentID); err != nil {
				return apperror.Wrap(err, "department")
			}
		}

		if roles.IsElevated() {
			pending := &models.PendingUser{
				Username:       req.Username,
				Email:          req.Email,
				Name:           req.Name,
				PasswordHash:   string(hash),
				RequestedRoles: roles,
				DepartmentID:   req.DepartmentID,
				Status:         models.PendingStatusPending,
			}
			if err := users.CreatePending(pending); err != nil {
				return err
			}
			result = &RegisterResult{
				Status:        RegistrationPendingApproval,
				Message:       pendingApprovalMessage,
				PendingUserID: uintPtr(pending.ID),
			}
			return nil
		}

		user := &models.User{
			Username:     req.Username,
			Email:        req.Email,
			Name:         req.Name,
			Password:     string(hash),
			Roles:        roles,
			DepartmentID: req.DepartmentID,
			Status:       models.UserStatusActive,
		}
		if err := users.Create(user); err != nil {
			return err
		}
		login, err := s.openSession(tx, user, client)
		if err != nil {
			return err
		}
		result = &RegisterResult{
			Status:    RegistrationAutoApproved,
			Message:   "Registration successful",
			Token:     login.Token,
			User:      user,
			ExpiresAt: &login.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("username", req.Username), zap.String("status", result.Status))
	return result, nil
}
