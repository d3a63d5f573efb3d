package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"startupops/config"
	"startupops/models"
	"startupops/worker"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))
	return db
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestNotifier() *worker.Notifier {
	return worker.NewNotifier(newTestLogger())
}

// asUser loads the user fresh on every request and plants it the way the
// auth middleware does, so handlers see current subscription state.
func asUser(db *gorm.DB, userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals("user", &user)
		c.Locals("userID", user.ID)
		return c.Next()
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seedFounder(t *testing.T, db *gorm.DB, email string) (*models.User, *models.Startup) {
	t.Helper()

	founder := models.User{Email: email, PasswordHash: "x", Role: models.RoleFounder}
	require.NoError(t, db.Create(&founder).Error)

	startup := models.Startup{Name: "Acme " + email, FounderID: founder.ID, PlanName: models.PlanFree}
	require.NoError(t, db.Create(&startup).Error)
	require.NoError(t, db.Model(&founder).Update("startup_id", startup.ID).Error)

	founder.StartupID = &startup.ID
	return &founder, &startup
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := models.User{Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return &u
}
