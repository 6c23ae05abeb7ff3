package services

import (
	"stock-app/apperror"
	"stock-app/models"
	"stock-app/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockDeleteIsSoftAndAudited(t *testing.T) {
	f := newFixture(t)
	svc := NewStockService(f.db, f.trail, f.log, 365)
	item := f.item(t, "Old Printer", f.warehouse.ID, 1, 0)

	deleted, err := svc.Delete(f.ctx, f.actor(f.manager), item.ID, "broken beyond repair")
	require.NoError(t, err)
	assert.Equal(t, models.StockStatusDeleted, deleted.Status)
	assert.Equal(t, models.StockStatusDeleted, f.reload(t, item.ID).Status)
	assert.EqualValues(t, 1, f.auditCount(t, models.AuditActionDelete))

	_, err = svc.Delete(f.ctx, f.actor(f.manager), item.ID, "again")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err := svc.List(f.ctx, repositories.StockFilter{DepartmentID: &f.warehouse.ID})
	require.NoError(t, err)
	for _, it := range list {
		assert.NotEqual(t, item.ID, it.ID)
	}
}

func TestStockMarkFaulty(t *testing.T) {
	f := newFixture(t)
	svc := NewStockService(f.db, f.trail, f.log, 365)
	item := f.item(t, "Drill", f.warehouse.ID, 2, 0)

	faulty, err := svc.MarkFaulty(f.ctx, f.actor(f.manager), item.ID, "motor burnt")
	require.NoError(t, err)
	assert.Equal(t, models.StockStatusFaulty, faulty.Status)
	assert.EqualValues(t, 1, f.auditCount(t, models.AuditActionMarkFaulty))

	_, err = svc.MarkFaulty(f.ctx, f.actor(f.manager), item.ID, "again")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.MarkFaulty(f.ctx, f.actor(f.manager), 4040, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assignments := NewAssignmentService(f.db, f.trail, f.log)
	_, err = assignments.Assign(f.ctx, f.actor(f.manager), AssignRequest{StockItemID: item.ID, AssigneeUserID: f.staff.ID})
	assert.ErrorIs(t, err, apperror.ErrInsufficientQuantity)
}

func TestStockUpdateParLevelRecomputesBelowPar(t *testing.T) {
	f := newFixture(t)
	svc := NewStockService(f.db, f.trail, f.log, 365)
	item := f.item(t, "Gloves", f.warehouse.ID, 4, 2)
	require.False(t, f.reload(t, item.ID).BelowPar)

	updated, err := svc.UpdateParLevel(f.ctx, f.actor(f.manager), item.ID, 10, "season")
	require.NoError(t, err)
	assert.Equal(t, 10, updated.ParLevel)
	assert.True(t, f.reload(t, item.ID).BelowPar)

	_, err = svc.UpdateParLevel(f.ctx, f.actor(f.manager), item.ID, 0, "")
	require.NoError(t, err)
	assert.False(t, f.reload(t, item.ID).BelowPar)

	_, err = svc.UpdateParLevel(f.ctx, f.actor(f.manager), item.ID, -1, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.EqualValues(t, 2, f.auditCount(t, models.AuditActionUpdateParLevel))
}

func TestStockWarnings(t *testing.T) {
	f := newFixture(t)
	svc := NewStockService(f.db, f.trail, f.log, 30)

	low := f.item(t, "Masks", f.warehouse.ID, 1, 5)
	old := f.item(t, "Archive Box", f.warehouse.ID, 9, 0)
	broken := f.item(t, "Ladder", f.warehouse.ID, 1, 0)
	require.NoError(t, f.db.Model(&models.StockItem{}).Where("id = ?", old.ID).
		UpdateColumn("created_at", time.Now().AddDate(0, 0, -45)).Error)
	_, err := svc.MarkFaulty(f.ctx, f.actor(f.manager), broken.ID, "cracked")
	require.NoError(t, err)

	w, err := svc.Warnings(f.ctx, &f.warehouse.ID)
	require.NoError(t, err)

	ids := func(items []models.StockItem) []uint {
		out := make([]uint, 0, len(items))
		for _, it := range items {
			out = append(out, it.ID)
		}
		return out
	}
	assert.Contains(t, ids(w.BelowPar), low.ID)
	assert.Contains(t, ids(w.Aging), old.ID)
	assert.NotContains(t, ids(w.Aging), low.ID)
	assert.Contains(t, ids(w.Faulty), broken.ID)
}

func TestAgingThresholdPrefersCategory(t *testing.T) {
	svc := NewStockService(nil, nil, nil, 365)
	assert.Equal(t, 365, svc.AgingThreshold(&models.StockItem{}))
	assert.Equal(t, 90, svc.AgingThreshold(&models.StockItem{Category: &models.StockCategory{AgingThresholdDays: 90}}))
}
