package services

import (
	"stock-app/apperror"
	"stock-app/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testClient = ClientInfo{
	IP:        "10.0.0.7",
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
}

func TestLoginOpensSessionAndLogsAttempts(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, f.log, testSecret, time.Hour)

	_, err := svc.Login(f.ctx, "admin", "wrong-password", testClient)
	assert.ErrorIs(t, err, apperror.ErrAuth)
	_, err = svc.Login(f.ctx, "nobody", "password", testClient)
	assert.ErrorIs(t, err, apperror.ErrAuth)

	res, err := svc.Login(f.ctx, "admin@example.com", "password", testClient)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "admin", res.User.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	claims, err := svc.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, claims.UserID)
	assert.True(t, claims.Roles.Has("admin"))

	user, session, err := svc.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, user.ID)
	assert.Equal(t, claims.SessionID, session.SessionID)

	var failed, succeeded int64
	f.db.Model(&models.LoginLog{}).Where("login_status = ?", LoginStatusFailed).Count(&failed)
	f.db.Model(&models.LoginLog{}).Where("login_status = ?", LoginStatusSuccess).Count(&succeeded)
	assert.EqualValues(t, 2, failed)
	assert.EqualValues(t, 1, succeeded)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, f.log, testSecret, time.Hour)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.staff.ID).Update("status", models.UserStatusSuspended).Error)

	_, err := svc.Login(f.ctx, "staff", "password", testClient)
	require.ErrorIs(t, err, apperror.ErrAuth)
	assert.Contains(t, err.Error(), "account is suspended")
}

func TestLogoutInvalidatesToken(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, f.log, testSecret, time.Hour)

	res, err := svc.Login(f.ctx, "manager", "password", testClient)
	require.NoError(t, err)
	_, session, err := svc.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(f.ctx, session.SessionID))

	_, _, err = svc.Authenticate(f.ctx, res.Token)
	assert.ErrorIs(t, err, apperror.ErrAuth)
	assert.ErrorIs(t, svc.Logout(f.ctx, session.SessionID), apperror.ErrAuth)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	f := newFixture(t)
	issuer := NewAuthService(f.db, f.log, "other-secret", time.Hour)
	verifier := NewAuthService(f.db, f.log, testSecret, time.Hour)

	res, err := issuer.Login(f.ctx, "admin", "password", testClient)
	require.NoError(t, err)

	_, err = verifier.ParseToken(res.Token)
	assert.ErrorIs(t, err, apperror.ErrAuth)
	_, err = verifier.ParseToken("not-a-token")
	assert.ErrorIs(t, err, apperror.ErrAuth)
}

func TestRegisterStaffIsAutoApproved(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, f.log, testSecret, time.Hour)

	res, err := svc.Register(f.ctx, RegisterRequest{
		Username:     "newstaff",
		Email:        "NewStaff@Example.com",
		Password:     "s3cretpass",
		Name:         "New Staff",
		Roles:        []string{"staff"},
		DepartmentID: &f.it.ID,
	}, testClient)
	require.NoError(t, err)
	assert.Equal(t, RegistrationAutoApproved, res.Status)
	assert.NotEmpty(t, res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, "newstaff@example.com", res.User.Email)

	var sessions int64
	f.db.Model(&models.UserSession{}).Where("user_id = ? AND is_active = ?", res.User.ID, true).Count(&sessions)
	assert.EqualValues(t, 1, sessions)

	_, err = svc.Register(f.ctx, RegisterRequest{
		Username: "newstaff", Email: "other@example.com", Password: "s3cretpass", Name: "Dup", Roles: []string{"staff"},
	}, testClient)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRegisterElevatedRoleWaitsForApproval(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, f.log, testSecret, time.Hour)

	res, err := svc.Register(f.ctx, RegisterRequest{
		Username: "boss",
		Email:    "boss@example.com",
		Password: "s3cretpass",
		Name:     "Boss",
		Roles:    []string{"stock_manager"},
	}, testClient)
	require.NoError(t, err)
	assert.Equal(t, RegistrationPendingApproval, res.Status)
	assert.Empty(t, res.Token)
	require.NotNil(t, res.PendingUserID)

	var users, pending, sessions int64
	f.db.Model(&models.User{}).Where("username = ?", "boss").Count(&users)
	f.db.Model(&models.PendingUser{}).Where("username = ? AND status = ?", "boss", models.PendingStatusPending).Count(&pending)
	f.db.Model(&models.UserSession{}).Count(&sessions)
	assert.EqualValues(t, 0, users)
	assert.EqualValues(t, 1, pending)
	assert.EqualValues(t, 0, sessions)

	_, err = svc.Register(f.ctx, RegisterRequest{
		Username: "boss", Email: "boss2@example.com", Password: "s3cretpass", Name: "Boss", Roles: []string{"staff"},
	}, testClient)
	assert.ErrorIs(t, err, apperror.ErrConflict, "pending usernames are reserved")
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, f.log, testSecret, time.Hour)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"no roles", RegisterRequest{Username: "abc", Email: "a@b.co", Password: "longenough", Name: "A"}},
		{"unknown role", RegisterRequest{Username: "abc", Email: "a@b.co", Password: "longenough", Name: "A", Roles: []string{"owner"}}},
		{"short password", RegisterRequest{Username: "abc", Email: "a@b.co", Password: "short", Name: "A", Roles: []string{"staff"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(f.ctx, tt.req, testClient)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestClientInfoDescribe(t *testing.T) {
	browser, os, device := testClient.Describe()
	assert.Equal(t, "Chrome", browser)
	assert.Equal(t, "Windows", os)
	assert.Equal(t, "DESKTOP", device)
}
