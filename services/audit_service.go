package services

import (
	"context"
	"fmt"
	"stock-app/models"
	"stock-app/repositories"
	"stock-app/types"
	"stock-app/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the authenticated user on whose behalf a service call runs.
type Actor struct {
	ID           uint
	Username     string
	Roles        types.RoleList
	DepartmentID *uint
}

func ActorFromUser(u *models.User) Actor {
	return Actor{ID: u.ID, Username: u.Username, Roles: u.Roles, DepartmentID: u.DepartmentID}
}

// AuditPublisher receives audit rows after their transaction committed.
type AuditPublisher interface {
	Publish(entry models.AuditLog)
}

// AuditTrail writes audit rows inside a caller's transaction and fans them
// out once the caller has committed.
type AuditTrail struct {
	publisher AuditPublisher
	log       *zap.Logger
}

func NewAuditTrail(publisher AuditPublisher, log *zap.Logger) *AuditTrail {
	return &AuditTrail{publisher: publisher, log: log}
}

func (a *AuditTrail) Write(tx *gorm.DB, actor Actor, entry models.AuditLog) (*models.AuditLog, error) {
	entry.PerformedByID = actor.ID
	entry.PerformedByName = actor.Username
	if err := repositories.NewAuditRepository(tx).Create(&entry); err != nil {
		return nil, fmt.Errorf("write audit %s: %w", entry.Action, err)
	}
	return &entry, nil
}

func (a *AuditTrail) Publish(entry *models.AuditLog) {
	if entry == nil {
		return
	}
	a.log.Info("audit",
		zap.String("action", entry.Action),
		zap.String("id", entry.ID.String()),
		zap.Uint("performed_by", entry.PerformedByID),
	)
	if a.publisher != nil {
		a.publisher.Publish(*entry)
	}
}

// withTx runs fn inside a transaction bound to ctx.
func withTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func uintPtr(v uint) *uint {
	return &v
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) List(ctx context.Context, f repositories.AuditFilter, page, perPage int) (utils.Page[models.AuditLog], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	logs, total, err := repositories.NewAuditRepository(s.db.WithContext(ctx)).List(f, page, perPage)
	if err != nil {
		return utils.Page[models.AuditLog]{}, err
	}
	return utils.NewPage(logs, total, page, perPage), nil
}

// ExportLimit caps the rows written to a spreadsheet export.
const ExportLimit = 10000

func (s *AuditService) ListAll(ctx context.Context, f repositories.AuditFilter) ([]models.AuditLog, error) {
	return repositories.NewAuditRepository(s.db.WithContext(ctx)).ListAll(f, ExportLimit)
}
