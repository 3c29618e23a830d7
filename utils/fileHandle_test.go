package utils

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"edumitra/config"
	"edumitra/database"
	"edumitra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database on a single connection.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	return db
}

func TestEnsureStudentWorkspacePersistsFolder(t *testing.T) {
	config.AppConfig = &config.Config{StudentStorageRoot: t.TempDir()}
	db := newTestDB(t)

	user := models.User{Name: "Asha", Email: "asha@example.com", Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)

	dir, err := EnsureStudentWorkspace(db, user.ID)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, dir, reloaded.StorageFolder)

	// Second call reuses the stored path instead of re-provisioning.
	again, err := EnsureStudentWorkspace(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestSaveUploadedFile(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	defer form.RemoveAll()
	header := form.File["image"][0]

	destDir := filepath.Join(t.TempDir(), "student_1")
	savedPath, err := SaveUploadedFile(header, destDir)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(savedPath))

	content, err := os.ReadFile(savedPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), content)
}

func TestGetFileURL(t *testing.T) {
	assert.Empty(t, GetFileURL(""))
	assert.Equal(t, "/uploads/students/student_7/a.png", GetFileURL("./uploads/students/student_7/a.png"))
	assert.Equal(t, "/uploads/students/student_7/a.png", GetFileURL("uploads/students/student_7/a.png"))
}
