package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"stock-app/database"
	"stock-app/migration"
	"stock-app/report"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
	Found   *bool             `json:"found"`
	Data    json.RawMessage   `json:"data"`
}

func newTestApp(t *testing.T, loginLimit int) *fiber.App {
	t.Helper()
	db, err := database.Open(database.Settings{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(db))
	require.NoError(t, database.RunSeeders(db, 1, true))

	app, _ := NewApp(Deps{
		DB:  db,
		Log: zap.NewNop(),
		Opts: Options{
			Prefix:           "/api/v1",
			JWTSecret:        "routes-test",
			TokenTTL:         time.Hour,
			TenantID:         1,
			DefaultAgingDays: 365,
			RequestTimeout:   5 * time.Second,
			LoginRateLimit:   loginLimit,
		},
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func login(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status, env := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "password",
	})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func TestRoleGates(t *testing.T) {
	app := newTestApp(t, 50)
	admin := login(t, app, "admin")
	staff := login(t, app, "staff")

	tests := []struct {
		name, method, path, token string
		want                      int
	}{
		{"public departments", fiber.MethodGet, "/departments", "", fiber.StatusOK},
		{"stock needs token", fiber.MethodGet, "/stock", "", fiber.StatusUnauthorized},
		{"staff cannot list stock", fiber.MethodGet, "/stock", staff, fiber.StatusForbidden},
		{"staff sees own equipment", fiber.MethodGet, "/stock/my-equipment", staff, fiber.StatusOK},
		{"staff reads categories", fiber.MethodGet, "/categories", staff, fiber.StatusOK},
		{"staff cannot read audit", fiber.MethodGet, "/audit/logs", staff, fiber.StatusForbidden},
		{"admin reads audit", fiber.MethodGet, "/audit/logs", admin, fiber.StatusOK},
		{"admin lists stock", fiber.MethodGet, "/stock", admin, fiber.StatusOK},
		{"admin warnings", fiber.MethodGet, "/stock/warnings", admin, fiber.StatusOK},
		{"staff cannot see pending users", fiber.MethodGet, "/admin/pending-users", staff, fiber.StatusForbidden},
		{"me", fiber.MethodGet, "/auth/me", staff, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, status, env.Message)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t, 50)
	token := login(t, app, "manager")

	status, _ := call(t, app, fiber.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, env := call(t, app, fiber.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "auth_error", env.Error)
}

func TestRegisterStatusCodes(t *testing.T) {
	app := newTestApp(t, 50)

	status, env := call(t, app, fiber.MethodPost, "/auth/register", "", map[string]interface{}{
		"username": "fresh", "email": "fresh@example.com", "password": "longpassword", "name": "Fresh", "roles": []string{"staff"},
	})
	assert.Equal(t, fiber.StatusCreated, status, env.Message)

	status, env = call(t, app, fiber.MethodPost, "/auth/register", "", map[string]interface{}{
		"username": "chief", "email": "chief@example.com", "password": "longpassword", "name": "Chief", "roles": []string{"admin"},
	})
	assert.Equal(t, fiber.StatusAccepted, status, env.Message)
	assert.Contains(t, env.Message, "submitted for approval")

	status, env = call(t, app, fiber.MethodPost, "/auth/register", "", map[string]interface{}{
		"username": "x", "email": "not-an-email", "password": "short", "name": "", "roles": []string{},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation_error", env.Error)
	assert.Contains(t, env.Fields, "email")
}

func TestIntakeAndTransferFlow(t *testing.T) {
	app := newTestApp(t, 50)
	admin := login(t, app, "admin")
	manager := login(t, app, "manager")

	status, env := call(t, app, fiber.MethodPost, "/intake", manager, map[string]interface{}{
		"item_name": "Widget", "supplier_vendor": "Acme", "quantity": 5, "unit_cost": "2.00", "department_id": 1,
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var intake struct {
		ItemID    uint            `json:"item_id"`
		IsNewItem bool            `json:"is_new_item"`
		TotalCost decimal.Decimal `json:"total_cost"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &intake))
	assert.True(t, intake.IsNewItem)
	assert.True(t, intake.TotalCost.Equal(decimal.NewFromInt(10)))

	status, env = call(t, app, fiber.MethodPost, "/stock/transfer", manager, map[string]interface{}{
		"stock_item_id": intake.ItemID, "from_department_id": 1, "to_department_id": 2, "quantity": 3,
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var transfer struct {
		ID           string `json:"id"`
		Status       string `json:"status"`
		TransferType string `json:"transfer_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &transfer))
	assert.Equal(t, "pending", transfer.Status)

	status, _ = call(t, app, fiber.MethodPost, "/transfers/"+transfer.ID+"/approve", manager, nil)
	assert.Equal(t, fiber.StatusForbidden, status, "only admins approve")

	status, env = call(t, app, fiber.MethodPost, "/transfers/"+transfer.ID+"/approve", admin, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &transfer))
	assert.Equal(t, "completed", transfer.Status)
	assert.Equal(t, "new_record", transfer.TransferType)

	status, env = call(t, app, fiber.MethodPost, "/stock/transfer", manager, map[string]interface{}{
		"stock_item_id": intake.ItemID, "from_department_id": 1, "to_department_id": 1, "quantity": 1,
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "same_department", env.Error)

	status, env = call(t, app, fiber.MethodGet, "/audit/logs?action=approve_transfer", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 1, page.Total)
}

func TestBarcodeLookupShape(t *testing.T) {
	app := newTestApp(t, 50)
	manager := login(t, app, "manager")

	status, env := call(t, app, fiber.MethodGet, "/intake/barcode/1234567890123", manager, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, env.Found)
	assert.True(t, *env.Found)

	status, env = call(t, app, fiber.MethodGet, "/intake/barcode/0000000000000", manager, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, env.Found)
	assert.False(t, *env.Found)
	assert.Equal(t, "null", string(env.Data))
}

func TestStockExportIsSpreadsheet(t *testing.T) {
	app := newTestApp(t, 50)
	admin := login(t, app, "admin")

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/stock/export", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, report.ContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "stock_")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 6, "header plus the five demo items")
}

func TestLoginIsRateLimited(t *testing.T) {
	app := newTestApp(t, 2)
	body := map[string]string{"username": "admin", "password": "wrong"}

	for i := 0; i < 2; i++ {
		status, _ := call(t, app, fiber.MethodPost, "/auth/login", "", body)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	}
	status, env := call(t, app, fiber.MethodPost, "/auth/login", "", body)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "rate_limited", env.Error)
}
