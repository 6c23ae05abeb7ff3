package services

import (
	"context"
	"errors"
	"stock-app/apperror"
	"stock-app/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(to, subject).Error(0)
}

func registerPending(t *testing.T, f *fixture, username string) uint {
	t.Helper()
	auth := NewAuthService(f.db, f.log, testSecret, time.Hour)
	res, err := auth.Register(f.ctx, RegisterRequest{
		Username:     username,
		Email:        username + "@example.com",
		Password:     "s3cretpass",
		Name:         "Pending " + username,
		Roles:        []string{"stock_manager"},
		DepartmentID: &f.warehouse.ID,
	}, testClient)
	require.NoError(t, err)
	require.NotNil(t, res.PendingUserID)
	return *res.PendingUserID
}

func TestReviewApproveCreatesUser(t *testing.T) {
	f := newFixture(t)
	mailer := new(mockMailer)
	mailer.On("Send", "newboss@example.com", "Your stock system account was approved").Return(nil).Once()
	svc := NewAccountService(f.db, f.trail, mailer, f.log)
	id := registerPending(t, f, "newboss")

	pending, err := svc.ListPending(f.ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	res, err := svc.Review(f.ctx, f.actor(f.admin), ReviewRequest{UserID: id, Action: ReviewApprove})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, models.PendingStatusApproved, res.Pending.Status)
	assert.True(t, res.User.Roles.Has("stock_manager"))
	assert.Equal(t, models.UserStatusActive, res.User.Status)
	assert.EqualValues(t, 1, f.auditCount(t, models.AuditActionApproveUser))
	mailer.AssertExpectations(t)

	auth := NewAuthService(f.db, f.log, testSecret, time.Hour)
	_, err = auth.Login(f.ctx, "newboss", "s3cretpass", testClient)
	assert.NoError(t, err, "approved user signs in with the registration password")

	_, err = svc.Review(f.ctx, f.actor(f.admin), ReviewRequest{UserID: id, Action: ReviewReject, RejectionReason: "late"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestReviewRejectNeedsReason(t *testing.T) {
	f := newFixture(t)
	mailer := new(mockMailer)
	mailer.On("Send", "nope@example.com", "Your stock system registration was rejected").
		Return(errors.New("smtp down")).Once()
	svc := NewAccountService(f.db, f.trail, mailer, f.log)
	id := registerPending(t, f, "nope")

	_, err := svc.Review(f.ctx, f.actor(f.admin), ReviewRequest{UserID: id, Action: ReviewReject})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	res, err := svc.Review(f.ctx, f.actor(f.admin), ReviewRequest{UserID: id, Action: ReviewReject, RejectionReason: "unknown person"})
	require.NoError(t, err, "mail failures do not fail the review")
	assert.Nil(t, res.User)
	assert.Equal(t, models.PendingStatusRejected, res.Pending.Status)
	assert.Equal(t, "unknown person", res.Pending.RejectionReason)

	var users int64
	f.db.Model(&models.User{}).Where("username = ?", "nope").Count(&users)
	assert.EqualValues(t, 0, users)
	assert.EqualValues(t, 1, f.auditCount(t, models.AuditActionRejectUser))
	mailer.AssertExpectations(t)
}

func TestUpdateRoles(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.db, f.trail, nil, f.log)

	user, err := svc.UpdateRoles(f.ctx, f.actor(f.admin), UpdateRolesRequest{
		UserID: f.staff.ID,
		Roles:  []string{"staff", "stock_manager"},
		Reason: "promotion",
	})
	require.NoError(t, err)
	assert.True(t, user.Roles.Has("stock_manager"))
	assert.EqualValues(t, 1, f.auditCount(t, models.AuditActionUpdateRoles))

	_, err = svc.UpdateRoles(f.ctx, f.actor(f.admin), UpdateRolesRequest{UserID: f.admin.ID, Roles: []string{"staff"}})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.UpdateRoles(f.ctx, f.actor(f.admin), UpdateRolesRequest{UserID: f.staff.ID, Roles: []string{"king"}})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.UpdateRoles(f.ctx, f.actor(f.admin), UpdateRolesRequest{UserID: 777, Roles: []string{"staff"}})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateStatusEndsSessions(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.db, f.trail, nil, f.log)
	auth := NewAuthService(f.db, f.log, testSecret, time.Hour)

	login, err := auth.Login(f.ctx, "staff", "password", testClient)
	require.NoError(t, err)

	user, err := svc.UpdateStatus(f.ctx, f.actor(f.admin), UpdateStatusRequest{
		UserID: f.staff.ID,
		Status: models.UserStatusSuspended,
		Reason: "policy",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, user.Status)
	assert.EqualValues(t, 1, f.auditCount(t, models.AuditActionUpdateStatus))

	_, _, err = auth.Authenticate(f.ctx, login.Token)
	assert.ErrorIs(t, err, apperror.ErrAuth)

	_, err = svc.UpdateStatus(f.ctx, f.actor(f.admin), UpdateStatusRequest{UserID: f.admin.ID, Status: models.UserStatusInactive})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.UpdateStatus(f.ctx, f.actor(f.admin), UpdateStatusRequest{UserID: f.staff.ID, Status: "banned"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
