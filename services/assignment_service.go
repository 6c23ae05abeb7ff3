package services

import (
	"context"
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

type AssignmentService struct {
	db    *gorm.DB
	audit *AuditTrail
	log   *zap.Logger
}

func NewAssignmentService(db *gorm.DB, audit *AuditTrail, log *zap.Logger) *AssignmentService {
	return &AssignmentService{db: db, audit: audit, log: log}
}

type AssignRequest struct {
	StockItemID    uint   `json:"stock_item_id" validate:"required"`
	AssigneeUserID uint   `json:"assignee_user_id" validate:"required"`
	Reason         string `json:"reason" validate:"max=500"`
}

// Assign hands one unit of a stock item to a user.
func (s *AssignmentService) Assign(ctx context.Context, actor Actor, req AssignRequest) (*models.Assignment, error) {
	var assignment *models.Assignment
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		assignee, err := repositories.NewUserRepository(tx).GetByID(req.AssigneeUserID)
		if err != nil {
			return apperror.Wrap(err, "assignee")
		}
		if !assignee.IsActive() {
			return apperror.Validation("assignee account is not active", map[string]string{"assignee_user_id": "inactive"})
		}

		item, err := applyDecrement(tx, req.StockItemID, 1, actor.ID, true)
		if err != nil {
			return err
		}

		assignment = &models.Assignment{
			StockItemID:  item.ID,
			UserID:       assignee.ID,
			AssignedByID: actor.ID,
			Reason:       strings.TrimSpace(req.Reason),
			Status:       models.AssignmentStatusActive,
			AssignedAt:   now(),
		}
		if err := repositories.NewAssignmentRepository(tx).Create(assignment); err != nil {
			return err
		}
		assignment.StockItem = item

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:        models.AuditActionAssign,
			Reason:        assignment.Reason,
			StockItemID:   uintPtr(item.ID),
			StockItemName: item.Name,
			UserID:        uintPtr(assignee.ID),
			DepartmentID:  uintPtr(item.DepartmentID),
			Details: datatypes.JSONMap{
				"assignment_id":  assignment.ID,
				"assignee":       assignee.Username,
				"quantity_after": item.Quantity,
				"below_par":      item.BelowPar,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return assignment, nil
}

type ReturnRequest struct {
	ItemID    uint   `json:"item_id" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=500"`
	Condition string `json:"condition" validate:"required,oneof=good damaged lost"`
}

// Return closes an active assignment. Good units go back on the shelf;
// damaged or lost units stay out of stock and are counted as faulty.
func (s *AssignmentService) Return(ctx context.Context, actor Actor, req ReturnRequest) (*models.Assignment, error) {
	switch req.Condition {
	case models.ConditionGood, models.ConditionDamaged, models.ConditionLost:
	default:
		return nil, apperror.Validation("condition must be good, damaged or lost", map[string]string{"condition": "oneof"})
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, apperror.Validation("reason is required", map[string]string{"reason": "required"})
	}

	var assignment *models.Assignment
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		repo := repositories.NewAssignmentRepository(tx)
		var err error
		assignment, err = repo.GetByID(req.ItemID)
		if err != nil {
			return apperror.Wrap(err, "assignment")
		}
		if assignment.UserID != actor.ID && !actor.Roles.HasAny(types.RoleAdmin, types.RoleStockManager) {
			return apperror.Forbidden("you can only return your own equipment")
		}
		if assignment.Status != models.AssignmentStatusActive {
			return apperror.Conflict("assignment was already returned")
		}

		stockRepo := repositories.NewStockRepository(tx)
		var item *models.StockItem
		if req.Condition == models.ConditionGood {
			if item, err = applyIncrement(tx, assignment.StockItemID, 1, actor.ID); err != nil {
				return err
			}
			assignment.Status = models.AssignmentStatusReturned
		} else {
			if err := stockRepo.IncrementFaulty(assignment.StockItemID); err != nil {
				return err
			}
			if item, err = stockRepo.GetByID(assignment.StockItemID); err != nil {
				return err
			}
			assignment.Status = models.AssignmentStatusFaulty
			assignment.IsFaulty = true
		}

		returnedAt := now()
		assignment.Condition = req.Condition
		assignment.ReturnReason = strings.TrimSpace(req.Reason)
		assignment.ReturnedAt = &returnedAt
		if err := repo.Save(assignment); err != nil {
			return err
		}
		assignment.StockItem = item

		entry, err = s.audit.Write(tx, actor, models.AuditLog{
			Action:        models.AuditActionReturn,
			Reason:        assignment.ReturnReason,
			StockItemID:   uintPtr(item.ID),
			StockItemName: item.Name,
			UserID:        uintPtr(assignment.UserID),
			DepartmentID:  uintPtr(item.DepartmentID),
			Details: datatypes.JSONMap{
				"assignment_id":  assignment.ID,
				"condition":      req.Condition,
				"quantity_after": item.Quantity,
				"is_faulty":      assignment.IsFaulty,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return assignment, nil
}

// MyEquipmentItem is what a staff member sees for each unit assigned to them.
type MyEquipmentItem struct {
	ID          uint   `json:"id"`
	StockItemID uint   `json:"stock_item_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Barcode     string `json:"barcode"`
	AssignedAt  string `json:"assigned_date"`
	Status      string `json:"status"`
	Condition   string `json:"condition"`
	IsFaulty    bool   `json:"is_faulty"`
}

func (s *AssignmentService) MyEquipment(ctx context.Context, userID uint) ([]MyEquipmentItem, error) {
	list, err := repositories.NewAssignmentRepository(s.db.WithContext(ctx)).ListForUser(userID)
	if err != nil {
		return nil, err
	}

	out := make([]MyEquipmentItem, 0, len(list))
	for _, a := range list {
		item := MyEquipmentItem{
			ID:          a.ID,
			StockItemID: a.StockItemID,
			AssignedAt:  a.AssignedAt.Format("2006-01-02T15:04:05Z07:00"),
			Status:      a.Status,
			Condition:   a.Condition,
			IsFaulty:    a.IsFaulty,
		}
		if a.StockItem != nil {
			item.Name = a.StockItem.Name
			item.Barcode = a.StockItem.Barcode
			if a.StockItem.Category != nil {
				item.Category = a.StockItem.Category.Name
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *AssignmentService) List(ctx context.Context, f repositories.AssignmentFilter, page, perPage int) (utils.Page[models.Assignment], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	list, total, err := repositories.NewAssignmentRepository(s.db.WithContext(ctx)).List(f, page, perPage)
	if err != nil {
		return utils.Page[models.Assignment]{}, err
	}
	return utils.NewPage(list, total, page, perPage), nil
}
