package services

import (
	"context"
	"errors"
	"fmt"
	"stock-app/apperror"
	"stock-app/models"
	"stock-app/repositories"
	"stock-app/types"
	"stock-app/utils"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TransferService moves stock between departments in two steps: a manager
// opens a pending transfer, an admin approves or rejects it. Quantities
// only move on approval.
type TransferService struct {
	db    *gorm.DB
	audit *AuditTrail
	log   *zap.Logger
}

func NewTransferService(db *gorm.DB, audit *AuditTrail, log *zap.Logger) *TransferService {
	return &TransferService{db: db, audit: audit, log: log}
}

type TransferRequest struct {
	StockItemID      uint   `json:"stock_item_id" validate:"required"`
	FromDepartmentID uint   `json:"from_department_id" validate:"required"`
	ToDepartmentID   uint   `json:"to_department_id" validate:"required"`
	Quantity         int    `json:"quantity"`
	Notes            string `json:"notes" validate:"max=500"`
}

// Initiate validates the request and records a pending transfer.
func (s *TransferService) Initiate(ctx context.Context, actor Actor, req TransferRequest) (*models.StockTransfer, error) {
	if req.FromDepartmentID == req.ToDepartmentID {
		return nil, apperror.SameDepartment()
	}
	if req.Quantity <= 0 {
		return nil, apperror.InvalidQuantity("quantity must be greater than 0")
	}

	var transfer *models.StockTransfer
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		source, err := loadLive(tx, req.StockItemID)
		if err != nil {
			return err
		}
		if source.DepartmentID != req.FromDepartmentID {
			return apperror.Validation("stock item does not belong to the source department",
				map[string]string{"from_department_id": "mismatch"})
		}
		if source.Status == models.StockStatusFaulty {
			return apperror.Conflict("faulty stock cannot be transferred")
		}
		if req.Quantity > source.Quantity {
			return apperror.InvalidQuantity(fmt.Sprintf("quantity %d exceeds the %d unit(s) available", req.Quantity, source.Quantity))
		}
		if _, err := repositories.NewDepartmentRepository(tx).GetByID(req.ToDepartmentID); err != nil {
			return apperror.Wrap(err, "destination department")
		}

		transferType, _, err := planDestination(tx, source, req.ToDepartmentID)
		if err != nil {
			return err
		}

		transfer = &models.StockTransfer{
			StockItemID:      source.ID,
			ItemName:         source.Name,
			FromDepartmentID: req.FromDepartmentID,
			ToDepartmentID:   req.ToDepartmentID,
			Quantity:         req.Quantity,
			Status:           models.TransferStatusPending,
			TransferType:     transferType,
			InitiatedByID:    actor.ID,
			Notes:            strings.TrimSpace(req.Notes),
			AuditNote:        auditNote(transferType, req.Quantity, source.Name, req.ToDepartmentID),
		}
		if err := repositories.NewTransferRepository(tx).Create(transfer); err != nil {
			return err
		}

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:        models.AuditActionTransfer,
			Reason:        transfer.Notes,
			StockItemID:   uintPtr(source.ID),
			StockItemName: source.Name,
			DepartmentID:  uintPtr(source.DepartmentID),
			Details: datatypes.JSONMap{
				"transfer_id":        transfer.ID.String(),
				"from_department_id": req.FromDepartmentID,
				"to_department_id":   req.ToDepartmentID,
				"quantity":           req.Quantity,
				"status":             transfer.Status,
				"transfer_type":      transferType,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return transfer, nil
}

// planDestination finds the item the transfer would merge into. A missing
// match means the transfer creates a new record.
func planDestination(tx *gorm.DB, source *models.StockItem, toDepartmentID uint) (string, *models.StockItem, error) {
	dest, err := repositories.NewStockRepository(tx).FindMatch(toDepartmentID, source.Barcode, source.Name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TransferTypeNewRecord, nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return models.TransferTypeMerge, dest, nil
}

func auditNote(transferType string, quantity int, name string, toDepartmentID uint) string {
	if transferType == models.TransferTypeMerge {
		return fmt.Sprintf("%d x %s merged into existing stock of department %d", quantity, name, toDepartmentID)
	}
	return fmt.Sprintf("%d x %s created as a new stock record in department %d", quantity, name, toDepartmentID)
}

func loadPendingTransfer(tx *gorm.DB, id types.SnowflakeID) (*models.StockTransfer, error) {
	transfer, err := repositories.NewTransferRepository(tx).GetByID(id)
	if err != nil {
		return nil, apperror.Wrap(err, "transfer")
	}
	if transfer.Status != models.TransferStatusPending {
		return nil, apperror.Conflict("transfer is already " + transfer.Status)
	}
	return transfer, nil
}

// Approve executes a pending transfer: the source loses the quantity and
// the destination either merges it or gets a new record. If the source no
// longer holds enough units the whole approval rolls back and the transfer
// stays pending.
func (s *TransferService) Approve(ctx context.Context, actor Actor, id types.SnowflakeID) (*models.StockTransfer, error) {
	var transfer *models.StockTransfer
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		if transfer, err = loadPendingTransfer(tx, id); err != nil {
			return err
		}

		source, err := applyDecrement(tx, transfer.StockItemID, transfer.Quantity, actor.ID, false)
		if err != nil {
			return err
		}

		transferType, dest, err := planDestination(tx, source, transfer.ToDepartmentID)
		if err != nil {
			return err
		}
		destQuantityBefore := 0
		if dest != nil {
			destQuantityBefore = dest.Quantity
			if dest, err = applyIncrement(tx, dest.ID, transfer.Quantity, actor.ID); err != nil {
				return err
			}
		} else {
			dest = &models.StockItem{
				Name:           source.Name,
				Barcode:        source.Barcode,
				CategoryID:     source.CategoryID,
				SupplierVendor: source.SupplierVendor,
				UnitCost:       source.UnitCost,
				Quantity:       transfer.Quantity,
				ParLevel:       source.ParLevel,
				DepartmentID:   transfer.ToDepartmentID,
				Status:         models.StockStatusAvailable,
				CreatedBy:      actor.ID,
				UpdatedBy:      actor.ID,
			}
			if err := repositories.NewStockRepository(tx).Create(dest); err != nil {
				return err
			}
		}

		at := now()
		transfer.Status = models.TransferStatusCompleted
		transfer.TransferType = transferType
		transfer.DestinationItemID = uintPtr(dest.ID)
		transfer.ApprovedByID = uintPtr(actor.ID)
		transfer.ApprovedAt = &at
		transfer.CompletedAt = &at
		transfer.AuditNote = auditNote(transferType, transfer.Quantity, source.Name, transfer.ToDepartmentID)

		rows, err := repositories.NewTransferRepository(tx).MarkDecided(transfer.ID, map[string]interface{}{
			"status":              transfer.Status,
			"transfer_type":       transfer.TransferType,
			"destination_item_id": dest.ID,
			"approved_by_id":      actor.ID,
			"approved_at":         at,
			"completed_at":        at,
			"audit_note":          transfer.AuditNote,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperror.Conflict("transfer was decided by someone else")
		}

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:        models.AuditActionApproveTransfer,
			Reason:        transfer.AuditNote,
			StockItemID:   uintPtr(source.ID),
			StockItemName: source.Name,
			DepartmentID:  uintPtr(source.DepartmentID),
			Details: datatypes.JSONMap{
				"transfer_id":            transfer.ID.String(),
				"transfer_type":          transferType,
				"quantity":               transfer.Quantity,
				"from_department_id":     transfer.FromDepartmentID,
				"to_department_id":       transfer.ToDepartmentID,
				"source_quantity_after":  source.Quantity,
				"destination_item_id":    dest.ID,
				"destination_qty_before": destQuantityBefore,
				"destination_qty_after":  dest.Quantity,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transfer completed",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("transfer_type", transfer.TransferType),
		zap.Int("quantity", transfer.Quantity),
	)
	s.audit.Publish(entry)
	return transfer, nil
}

func (s *TransferService) Reject(ctx context.Context, actor Actor, id types.SnowflakeID, reason string) (*models.StockTransfer, error) {
	var transfer *models.StockTransfer
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		if transfer, err = loadPendingTransfer(tx, id); err != nil {
			return err
		}

		at := now()
		transfer.Status = models.TransferStatusRejected
		transfer.ApprovedByID = uintPtr(actor.ID)
		transfer.ApprovedAt = &at
		transfer.RejectionReason = strings.TrimSpace(reason)

		rows, err := repositories.NewTransferRepository(tx).MarkDecided(transfer.ID, map[string]interface{}{
			"status":           transfer.Status,
			"approved_by_id":   actor.ID,
			"approved_at":      at,
			"rejection_reason": transfer.RejectionReason,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperror.Conflict("transfer was decided by someone else")
		}

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:        models.AuditActionRejectTransfer,
			Reason:        transfer.RejectionReason,
			StockItemID:   uintPtr(transfer.StockItemID),
			StockItemName: transfer.ItemName,
			DepartmentID:  uintPtr(transfer.FromDepartmentID),
			Details: datatypes.JSONMap{
				"transfer_id":      transfer.ID.String(),
				"quantity":         transfer.Quantity,
				"to_department_id": transfer.ToDepartmentID,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return transfer, nil
}

func (s *TransferService) Get(ctx context.Context, id types.SnowflakeID) (*models.StockTransfer, error) {
	transfer, err := repositories.NewTransferRepository(s.db.WithContext(ctx)).GetByID(id)
	if err != nil {
		return nil, apperror.Wrap(err, "transfer")
	}
	return transfer, nil
}

func (s *TransferService) List(ctx context.Context, f repositories.TransferFilter, page, perPage int) (utils.Page[models.StockTransfer], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	list, total, err := repositories.NewTransferRepository(s.db.WithContext(ctx)).List(f, page, perPage)
	if err != nil {
		return utils.Page[models.StockTransfer]{}, err
	}
	return utils.NewPage(list, total, page, perPage), nil
}
