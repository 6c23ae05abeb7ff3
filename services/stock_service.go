package services

import (
	"context"
	"errors"
	"fmt"
	"stock-app/apperror"
	"stock-app/models"
	"stock-app/repositories"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StockService struct {
	db               *gorm.DB
	audit            *AuditTrail
	log              *zap.Logger
	defaultAgingDays int
}

func NewStockService(db *gorm.DB, audit *AuditTrail, log *zap.Logger, defaultAgingDays int) *StockService {
	if defaultAgingDays < 1 {
		defaultAgingDays = 365
	}
	return &StockService{db: db, audit: audit, log: log, defaultAgingDays: defaultAgingDays}
}

func (s *StockService) List(ctx context.Context, f repositories.StockFilter) ([]models.StockItem, error) {
	return repositories.NewStockRepository(s.db.WithContext(ctx)).List(f)
}

func (s *StockService) Get(ctx context.Context, id uint) (*models.StockItem, error) {
	item, err := repositories.NewStockRepository(s.db.WithContext(ctx)).GetByID(id)
	if err != nil {
		return nil, apperror.Wrap(err, "stock item")
	}
	return item, nil
}

// loadLive returns a stock item that has not been soft-deleted.
func loadLive(tx *gorm.DB, id uint) (*models.StockItem, error) {
	item, err := repositories.NewStockRepository(tx).GetByID(id)
	if err != nil {
		return nil, apperror.Wrap(err, "stock item")
	}
	if item.Status == models.StockStatusDeleted {
		return nil, apperror.NotFound("stock item")
	}
	return item, nil
}

// Delete soft-deletes the item; rows are never physically removed.
func (s *StockService) Delete(ctx context.Context, actor Actor, id uint, reason string) (*models.StockItem, error) {
	var item *models.StockItem
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		if item, err = loadLive(tx, id); err != nil {
			return err
		}

		previous := item.Status
		item.Status = models.StockStatusDeleted
		item.UpdatedBy = actor.ID
		if err := repositories.NewStockRepository(tx).Save(item); err != nil {
			return err
		}

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:        models.AuditActionDelete,
			Reason:        reason,
			StockItemID:   uintPtr(item.ID),
			StockItemName: item.Name,
			DepartmentID:  uintPtr(item.DepartmentID),
			Details: datatypes.JSONMap{
				"previous_status": previous,
				"quantity":        item.Quantity,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return item, nil
}

func (s *StockService) MarkFaulty(ctx context.Context, actor Actor, id uint, reason string) (*models.StockItem, error) {
	if reason == "" {
		return nil, apperror.Validation("reason is required", map[string]string{"reason": "required"})
	}

	var item *models.StockItem
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		if item, err = loadLive(tx, id); err != nil {
			return err
		}
		if item.Status == models.StockStatusFaulty {
			return apperror.Conflict("stock item is already marked faulty")
		}

		previous := item.Status
		item.Status = models.StockStatusFaulty
		item.UpdatedBy = actor.ID
		if err := repositories.NewStockRepository(tx).Save(item); err != nil {
			return err
		}

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:        models.AuditActionMarkFaulty,
			Reason:        reason,
			StockItemID:   uintPtr(item.ID),
			StockItemName: item.Name,
			DepartmentID:  uintPtr(item.DepartmentID),
			Details: datatypes.JSONMap{
				"previous_status": previous,
				"quantity":        item.Quantity,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return item, nil
}

func (s *StockService) UpdateParLevel(ctx context.Context, actor Actor, id uint, parLevel int, reason string) (*models.StockItem, error) {
	if parLevel < 0 {
		return nil, apperror.Validation("par_level must not be negative", map[string]string{"par_level": "min=0"})
	}

	var item *models.StockItem
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		if item, err = loadLive(tx, id); err != nil {
			return err
		}

		previous := item.ParLevel
		item.ParLevel = parLevel
		item.UpdatedBy = actor.ID
		// BeforeSave recomputes below_par
		if err := repositories.NewStockRepository(tx).Save(item); err != nil {
			return err
		}

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:        models.AuditActionUpdateParLevel,
			Reason:        reason,
			StockItemID:   uintPtr(item.ID),
			StockItemName: item.Name,
			DepartmentID:  uintPtr(item.DepartmentID),
			Details: datatypes.JSONMap{
				"old_par_level": previous,
				"new_par_level": parLevel,
				"quantity":      item.Quantity,
				"below_par":     item.BelowPar,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return item, nil
}

type StockWarnings struct {
	BelowPar []models.StockItem `json:"below_par"`
	Aging    []models.StockItem `json:"aging"`
	Faulty   []models.StockItem `json:"faulty"`
}

// Warnings feeds the dashboard widget. Aging uses the category threshold
// when the item has one and the configured default otherwise.
func (s *StockService) Warnings(ctx context.Context, departmentID *uint) (*StockWarnings, error) {
	repo := repositories.NewStockRepository(s.db.WithContext(ctx))

	items, err := repo.List(repositories.StockFilter{DepartmentID: departmentID})
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	faulty, err := repo.ListFaulty(departmentID)
	if err != nil {
		return nil, fmt.Errorf("list faulty stock: %w", err)
	}

	w := &StockWarnings{
		BelowPar: []models.StockItem{},
		Aging:    []models.StockItem{},
		Faulty:   faulty,
	}
	for _, item := range items {
		if item.Status == models.StockStatusFaulty {
			continue
		}
		if item.BelowPar {
			w.BelowPar = append(w.BelowPar, item)
		}
		if item.AgeInDays >= s.AgingThreshold(&item) {
			w.Aging = append(w.Aging, item)
		}
	}
	return w, nil
}

func (s *StockService) AgingThreshold(item *models.StockItem) int {
	if item.Category != nil && item.Category.AgingThresholdDays > 0 {
		return item.Category.AgingThresholdDays
	}
	return s.defaultAgingDays
}

// applyIncrement adds n units to an existing item and refreshes derived fields.
func applyIncrement(tx *gorm.DB, id uint, n int, actorID uint) (*models.StockItem, error) {
	repo := repositories.NewStockRepository(tx)
	rows, err := repo.Increment(id, n)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperror.Conflict("stock item can no longer receive stock")
	}
	return repo.Refresh(id, actorID, false)
}

// applyDecrement removes n available units atomically. When the condition
// fails the item is reloaded to pick the right error. viaAssignment marks
// the decrement as handing units to a person.
func applyDecrement(tx *gorm.DB, id uint, n int, actorID uint, viaAssignment bool) (*models.StockItem, error) {
	repo := repositories.NewStockRepository(tx)
	rows, err := repo.DecrementAvailable(id, n)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		item, err := repo.GetByID(id)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && item.Status == models.StockStatusDeleted) {
			return nil, apperror.NotFound("stock item")
		}
		if err != nil {
			return nil, err
		}
		if item.Status == models.StockStatusFaulty {
			return nil, apperror.InsufficientQuantity("stock item is marked faulty")
		}
		return nil, apperror.InsufficientQuantity(fmt.Sprintf("only %d unit(s) of %s available", item.Quantity, item.Name))
	}
	return repo.Refresh(id, actorID, viaAssignment)
}

func now() time.Time {
	return time.Now().UTC()
}
