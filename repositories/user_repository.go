package repositories

import (
	"stock-app/models"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(DB *gorm.DB) *UserRepository {
	return &UserRepository{DB: DB}
}

type UserFilter struct {
	DepartmentID *uint
	Role         string
	Status       string
}

func (r *UserRepository) Create(user *models.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.DB.Preload("Department").First(&user, id).Error
	return &user, err
}

// GetByLogin finds a user by username or email.
func (r *UserRepository) GetByLogin(login string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("username = ? OR email = ?", login, login).First(&user).Error
	return &user, err
}

// IdentityTaken reports whether the username or email is used by a user
// or by a registration still waiting for review.
func (r *UserRepository) IdentityTaken(username, email string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil || count > 0 {
		return count > 0, err
	}
	err = r.DB.Model(&models.PendingUser{}).
		Where("status = ? AND (username = ? OR email = ?)", models.PendingStatusPending, username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) List(f UserFilter) ([]models.User, error) {
	q := r.DB.Model(&models.User{}).Preload("Department")
	if f.DepartmentID != nil {
		q = q.Where("department_id = ?", *f.DepartmentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var users []models.User
	if err := q.Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	if f.Role == "" {
		return users, nil
	}

	// roles live in one delimited column, so the role filter runs here
	filtered := users[:0]
	for _, u := range users {
		if u.Roles.Has(f.Role) {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

func (r *UserRepository) UpdateColumns(id uint, values map[string]interface{}) error {
	return r.DB.Model(&models.User{}).Where("id = ?", id).Updates(values).Error
}

func (r *UserRepository) CreatePending(p *models.PendingUser) error {
	return r.DB.Create(p).Error
}

func (r *UserRepository) GetPendingByID(id uint) (*models.PendingUser, error) {
	var p models.PendingUser
	err := r.DB.First(&p, id).Error
	return &p, err
}

func (r *UserRepository) ListPending() ([]models.PendingUser, error) {
	var pending []models.PendingUser
	err := r.DB.Where("status = ?", models.PendingStatusPending).Order("created_at asc, id asc").Find(&pending).Error
	return pending, err
}

func (r *UserRepository) SavePending(p *models.PendingUser) error {
	return r.DB.Save(p).Error
}

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(DB *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: DB}
}

func (r *SessionRepository) Create(s *models.UserSession) error {
	return r.DB.Create(s).Error
}

// GetActive returns the session only while it is active and unexpired.
func (r *SessionRepository) GetActive(sessionID string, now time.Time) (*models.UserSession, error) {
	var s models.UserSession
	err := r.DB.Where("session_id = ? AND is_active = ? AND expires_at > ?", sessionID, true, now).First(&s).Error
	return &s, err
}

func (r *SessionRepository) Touch(id uint, now time.Time) error {
	return r.DB.Model(&models.UserSession{}).Where("id = ?", id).UpdateColumn("last_activity_at", now).Error
}

func (r *SessionRepository) Deactivate(sessionID string, now time.Time) (int64, error) {
	res := r.DB.Model(&models.UserSession{}).
		Where("session_id = ? AND is_active = ?", sessionID, true).
		Updates(map[string]interface{}{"is_active": false, "last_activity_at": now})
	return res.RowsAffected, res.Error
}

func (r *SessionRepository) DeactivateAllForUser(userID uint, now time.Time) error {
	return r.DB.Model(&models.UserSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]interface{}{"is_active": false, "last_activity_at": now}).Error
}

func (r *SessionRepository) CountActiveForUser(userID uint, now time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&models.UserSession{}).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now).
		Count(&count).Error
	return count, err
}

func (r *SessionRepository) CreateLoginLog(l *models.LoginLog) error {
	return r.DB.Create(l).Error
}

func (r *SessionRepository) MarkLogout(sessionID string, now time.Time) error {
	return r.DB.Model(&models.LoginLog{}).
		Where("session_id = ? AND logout_at IS NULL", sessionID).
		Update("logout_at", &now).Error
}
