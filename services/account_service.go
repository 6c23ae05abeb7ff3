package services

import (
	"context"
	"fmt"
	"stock-app/apperror"
	"stock-app/models"
	"stock-app/repositories"
	"stock-app/types"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReviewApprove = "approve"
	ReviewReject  = "reject"
)

// Mailer delivers account notifications. Delivery failures never undo the
// change that triggered them.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AccountService covers the admin side of user management: reviewing
// registrations and changing roles or status.
type AccountService struct {
	db     *gorm.DB
	audit  *AuditTrail
	mailer Mailer
	log    *zap.Logger
}

func NewAccountService(db *gorm.DB, audit *AuditTrail, mailer Mailer, log *zap.Logger) *AccountService {
	return &AccountService{db: db, audit: audit, mailer: mailer, log: log}
}

func (s *AccountService) ListPending(ctx context.Context) ([]models.PendingUser, error) {
	return repositories.NewUserRepository(s.db.WithContext(ctx)).ListPending()
}

func (s *AccountService) ListUsers(ctx context.Context, f repositories.UserFilter) ([]models.User, error) {
	return repositories.NewUserRepository(s.db.WithContext(ctx)).List(f)
}

type ReviewRequest struct {
	UserID          uint   `json:"user_id" validate:"required"`
	Action          string `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason string `json:"rejection_reason" validate:"max=500"`
}

type ReviewResult struct {
	Pending *models.PendingUser `json:"pending_user"`
	User    *models.User        `json:"user,omitempty"`
}

// Review approves or rejects a pending registration. Approval creates the
// real account with the requested roles; rejection needs a reason.
func (s *AccountService) Review(ctx context.Context, actor Actor, req ReviewRequest) (*ReviewResult, error) {
	req.RejectionReason = strings.TrimSpace(req.RejectionReason)
	switch req.Action {
	case ReviewApprove:
	case ReviewReject:
		if req.RejectionReason == "" {
			return nil, apperror.Validation("rejection_reason is required when rejecting", map[string]string{"rejection_reason": "required"})
		}
	default:
		return nil, apperror.Validation("action must be approve or reject", map[string]string{"action": "oneof"})
	}

	result := &ReviewResult{}
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		pending, err := users.GetPendingByID(req.UserID)
		if err != nil {
			return apperror.Wrap(err, "pending user")
		}
		if pending.Status != models.PendingStatusPending {
			return apperror.Conflict("registration was already " + pending.Status)
		}

		reviewedAt := now()
		pending.ReviewedByID = uintPtr(actor.ID)
		pending.ReviewedAt = &reviewedAt

		audit := models.AuditLog{
			Details: datatypes.JSONMap{
				"pending_user_id": pending.ID,
				"username":        pending.Username,
				"requested_roles": strings.Join(pending.RequestedRoles, ","),
			},
		}

		if req.Action == ReviewApprove {
			user := &models.User{
				Username:     pending.Username,
				Email:        pending.Email,
				Name:         pending.Name,
				Password:     pending.PasswordHash,
				Roles:        pending.RequestedRoles.Normalize(),
				DepartmentID: pending.DepartmentID,
				Status:       models.UserStatusActive,
			}
			if err := users.Create(user); err != nil {
				return fmt.Errorf("create approved user: %w", err)
			}
			pending.Status = models.PendingStatusApproved
			pending.ApprovedUserID = uintPtr(user.ID)
			result.User = user

			audit.Action = models.AuditActionApproveUser
			audit.UserID = uintPtr(user.ID)
			audit.DepartmentID = user.DepartmentID
		} else {
			pending.Status = models.PendingStatusRejected
			pending.RejectionReason = req.RejectionReason

			audit.Action = models.AuditActionRejectUser
			audit.Reason = req.RejectionReason
			audit.DepartmentID = pending.DepartmentID
		}

		if err := users.SavePending(pending); err != nil {
			return err
		}
		result.Pending = pending

		entry, err = s.audit.Write(tx, actor, audit)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	s.notifyReview(ctx, result.Pending)
	return result, nil
}

func (s *AccountService) notifyReview(ctx context.Context, p *models.PendingUser) {
	if s.mailer == nil || p.Email == "" {
		return
	}

	subject := "Your stock system account was approved"
	body := fmt.Sprintf("Hello %s,\n\nYour registration as %s has been approved. You can now sign in as %s.\n",
		p.Name, strings.Join(p.RequestedRoles, ", "), p.Username)
	if p.Status == models.PendingStatusRejected {
		subject = "Your stock system registration was rejected"
		body = fmt.Sprintf("Hello %s,\n\nYour registration was rejected.\nReason: %s\n", p.Name, p.RejectionReason)
	}

	if err := s.mailer.Send(ctx, p.Email, subject, body); err != nil {
		s.log.Warn("review notification not sent", zap.String("email", p.Email), zap.Error(err))
	}
}

type UpdateRolesRequest struct {
	UserID uint     `json:"user_id" validate:"required"`
	Roles  []string `json:"roles" validate:"required,min=1"`
	Reason string   `json:"reason" validate:"max=500"`
}

func (s *AccountService) UpdateRoles(ctx context.Context, actor Actor, req UpdateRolesRequest) (*models.User, error) {
	roles := types.RoleList(req.Roles).Normalize()
	if len(roles) == 0 {
		return nil, apperror.Validation("at least one role is required", map[string]string{"roles": "required"})
	}
	if bad := roles.Invalid(); len(bad) > 0 {
		return nil, apperror.Validation("unknown role: "+strings.Join(bad, ", "), map[string]string{"roles": "oneof"})
	}
	if req.UserID == actor.ID && actor.Roles.Has(types.RoleAdmin) && !roles.Has(types.RoleAdmin) {
		return nil, apperror.Conflict("administrators cannot remove their own admin role")
	}

	var user *models.User
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		var err error
		if user, err = users.GetByID(req.UserID); err != nil {
			return apperror.Wrap(err, "user")
		}

		previous := user.Roles.Normalize()
		if err := users.UpdateColumns(user.ID, map[string]interface{}{"roles": roles}); err != nil {
			return err
		}
		user.Roles = roles

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:       models.AuditActionUpdateRoles,
			Reason:       strings.TrimSpace(req.Reason),
			UserID:       uintPtr(user.ID),
			DepartmentID: user.DepartmentID,
			Details: datatypes.JSONMap{
				"username":  user.Username,
				"old_roles": strings.Join(previous, ","),
				"new_roles": strings.Join(roles, ","),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return user, nil
}

type UpdateStatusRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
	Reason string `json:"reason" validate:"max=500"`
}

// UpdateStatus changes the account status. Leaving active ends every open
// session of the user.
func (s *AccountService) UpdateStatus(ctx context.Context, actor Actor, req UpdateStatusRequest) (*models.User, error) {
	switch req.Status {
	case models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended:
	default:
		return nil, apperror.Validation("status must be active, inactive or suspended", map[string]string{"status": "oneof"})
	}
	if req.UserID == actor.ID {
		return nil, apperror.Conflict("administrators cannot change their own status")
	}

	var user *models.User
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		var err error
		if user, err = users.GetByID(req.UserID); err != nil {
			return apperror.Wrap(err, "user")
		}

		previous := user.Status
		if err := users.UpdateColumns(user.ID, map[string]interface{}{"status": req.Status}); err != nil {
			return err
		}
		user.Status = req.Status
		if req.Status != models.UserStatusActive {
			if err := repositories.NewSessionRepository(tx).DeactivateAllForUser(user.ID, now()); err != nil {
				return err
			}
		}

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:       models.AuditActionUpdateStatus,
			Reason:       strings.TrimSpace(req.Reason),
			UserID:       uintPtr(user.ID),
			DepartmentID: user.DepartmentID,
			Details: datatypes.JSONMap{
				"username":   user.Username,
				"old_status": previous,
				"new_status": req.Status,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return user, nil
}
