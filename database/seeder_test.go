package database

import (
	"stock-app/migration"
	"stock-app/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSeedersIsIdempotent(t *testing.T) {
	db, err := Open(Settings{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(db))

	require.NoError(t, RunSeeders(db, 1, true))
	require.NoError(t, RunSeeders(db, 1, true))

	var departments, categories, barcodes, users, items int64
	db.Model(&models.Department{}).Count(&departments)
	db.Model(&models.StockCategory{}).Count(&categories)
	db.Model(&models.BarcodeItem{}).Count(&barcodes)
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.StockItem{}).Count(&items)

	assert.EqualValues(t, 4, departments)
	assert.EqualValues(t, 3, categories)
	assert.EqualValues(t, 3, barcodes)
	assert.EqualValues(t, 4, users)
	assert.EqualValues(t, 5, items)

	var mouse models.StockItem
	require.NoError(t, db.Where("name = ?", "Wireless Mouse").First(&mouse).Error)
	assert.True(t, mouse.BelowPar)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Settings{Driver: "oracle"})
	assert.Error(t, err)
}
