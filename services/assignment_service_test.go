package services

import (
	"stock-app/apperror"
	"stock-app/models"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignThenReturnGoodRestoresQuantity(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(f.db, f.trail, f.log)
	item := f.item(t, "Laptop", f.warehouse.ID, 3, 3)

	assignment, err := svc.Assign(f.ctx, f.actor(f.manager), AssignRequest{
		StockItemID:    item.ID,
		AssigneeUserID: f.staff.ID,
		Reason:         "new hire",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusActive, assignment.Status)

	after := f.reload(t, item.ID)
	assert.Equal(t, 2, after.Quantity)
	assert.True(t, after.BelowPar)
	assert.EqualValues(t, 1, f.auditCount(t, models.AuditActionAssign))

	returned, err := svc.Return(f.ctx, f.actor(f.staff), ReturnRequest{
		ItemID:    assignment.ID,
		Reason:    "leaving",
		Condition: models.ConditionGood,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusReturned, returned.Status)
	assert.False(t, returned.IsFaulty)

	after = f.reload(t, item.ID)
	assert.Equal(t, 3, after.Quantity)
	assert.False(t, after.BelowPar)
	assert.EqualValues(t, 1, f.auditCount(t, models.AuditActionReturn))
}

func TestReturnDamagedOrLostKeepsQuantity(t *testing.T) {
	for _, condition := range []string{models.ConditionDamaged, models.ConditionLost} {
		t.Run(condition, func(t *testing.T) {
			f := newFixture(t)
			svc := NewAssignmentService(f.db, f.trail, f.log)
			item := f.item(t, "Headset", f.warehouse.ID, 2, 0)

			assignment, err := svc.Assign(f.ctx, f.actor(f.manager), AssignRequest{StockItemID: item.ID, AssigneeUserID: f.staff.ID})
			require.NoError(t, err)

			returned, err := svc.Return(f.ctx, f.actor(f.manager), ReturnRequest{
				ItemID:    assignment.ID,
				Reason:    "broken on arrival",
				Condition: condition,
			})
			require.NoError(t, err)
			assert.Equal(t, models.AssignmentStatusFaulty, returned.Status)
			assert.True(t, returned.IsFaulty)

			after := f.reload(t, item.ID)
			assert.Equal(t, 1, after.Quantity)
			assert.Equal(t, 1, after.FaultyQuantity)
		})
	}
}

func TestAssignLastUnitMarksItemAssigned(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(f.db, f.trail, f.log)
	item := f.item(t, "Projector", f.warehouse.ID, 1, 1)

	_, err := svc.Assign(f.ctx, f.actor(f.admin), AssignRequest{StockItemID: item.ID, AssigneeUserID: f.staff.ID})
	require.NoError(t, err)

	after := f.reload(t, item.ID)
	assert.Equal(t, 0, after.Quantity)
	assert.Equal(t, models.StockStatusAssigned, after.Status)

	_, err = svc.Assign(f.ctx, f.actor(f.admin), AssignRequest{StockItemID: item.ID, AssigneeUserID: f.staff.ID})
	assert.ErrorIs(t, err, apperror.ErrInsufficientQuantity)
}

func TestConcurrentAssignsOnLastUnit(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(f.db, f.trail, f.log)
	item := f.item(t, "Monitor", f.warehouse.ID, 1, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Assign(f.ctx, f.actor(f.manager), AssignRequest{StockItemID: item.ID, AssigneeUserID: f.staff.ID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrInsufficientQuantity)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.reload(t, item.ID).Quantity)
	assert.EqualValues(t, 1, f.auditCount(t, models.AuditActionAssign))
}

func TestAssignErrors(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(f.db, f.trail, f.log)
	item := f.item(t, "Keyboard", f.warehouse.ID, 5, 0)

	_, err := svc.Assign(f.ctx, f.actor(f.manager), AssignRequest{StockItemID: 9999, AssigneeUserID: f.staff.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Assign(f.ctx, f.actor(f.manager), AssignRequest{StockItemID: item.ID, AssigneeUserID: 9999})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.staff.ID).Update("status", models.UserStatusSuspended).Error)
	_, err = svc.Assign(f.ctx, f.actor(f.manager), AssignRequest{StockItemID: item.ID, AssigneeUserID: f.staff.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.Equal(t, 5, f.reload(t, item.ID).Quantity)
	assert.EqualValues(t, 0, f.auditCount(t, models.AuditActionAssign))
}

func TestReturnRules(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(f.db, f.trail, f.log)
	item := f.item(t, "Tablet", f.warehouse.ID, 2, 0)

	assignment, err := svc.Assign(f.ctx, f.actor(f.manager), AssignRequest{StockItemID: item.ID, AssigneeUserID: f.manager.ID})
	require.NoError(t, err)

	_, err = svc.Return(f.ctx, f.actor(f.staff), ReturnRequest{ItemID: assignment.ID, Reason: "x", Condition: models.ConditionGood})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.Return(f.ctx, f.actor(f.manager), ReturnRequest{ItemID: assignment.ID, Reason: "x", Condition: "stolen"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Return(f.ctx, f.actor(f.manager), ReturnRequest{ItemID: assignment.ID, Reason: "done", Condition: models.ConditionGood})
	require.NoError(t, err)

	_, err = svc.Return(f.ctx, f.actor(f.manager), ReturnRequest{ItemID: assignment.ID, Reason: "again", Condition: models.ConditionGood})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.Return(f.ctx, f.actor(f.manager), ReturnRequest{ItemID: 4242, Reason: "x", Condition: models.ConditionGood})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMyEquipmentListsOnlyCallerAssignments(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(f.db, f.trail, f.log)
	item := f.item(t, "Phone", f.warehouse.ID, 3, 0)

	_, err := svc.Assign(f.ctx, f.actor(f.manager), AssignRequest{StockItemID: item.ID, AssigneeUserID: f.staff.ID})
	require.NoError(t, err)
	_, err = svc.Assign(f.ctx, f.actor(f.manager), AssignRequest{StockItemID: item.ID, AssigneeUserID: f.admin.ID})
	require.NoError(t, err)

	mine, err := svc.MyEquipment(f.ctx, f.staff.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Phone", mine[0].Name)
	assert.False(t, mine[0].IsFaulty)
}
