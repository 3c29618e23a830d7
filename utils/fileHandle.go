package utils

import (
	"edumitra/config"
	"edumitra/models"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ProvisionStudentWorkspace creates the per-student file area used for
// submissions and downloads. Callers treat failure as non-fatal: the
// enrollment stands either way.
func ProvisionStudentWorkspace(userID uint) (string, error) {
	root := "./uploads/students"
	if config.AppConfig != nil && config.AppConfig.StudentStorageRoot != "" {
		root = config.AppConfig.StudentStorageRoot
	}

	dir := filepath.Join(root, fmt.Sprintf("student_%d", userID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("[STORAGE] Failed to provision workspace for student %d: %v", userID, err)
		return "", err
	}
	return dir, nil
}

// EnsureStudentWorkspace returns the student's file area, provisioning it
// and persisting the path on the user record on first use.
func EnsureStudentWorkspace(db *gorm.DB, userID uint) (string, error) {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return "", err
	}
	if user.StorageFolder != "" {
		return user.StorageFolder, nil
	}

	dir, err := ProvisionStudentWorkspace(userID)
	if err != nil {
		return "", err
	}
	if err := db.Model(&user).Update("storage_folder", dir).Error; err != nil {
		return "", err
	}
	return dir, nil
}

// SaveUploadedFile stores an uploaded file under destDir with a unique name.
func SaveUploadedFile(file *multipart.FileHeader, destDir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Filename)
	newFilename := time.Now().Format("20060102150405") + ext
	filePath := filepath.Join(destDir, newFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return filePath, nil
}

// GetFileURL maps a stored file path to the URL it is served under.
func GetFileURL(filePath string) string {
	if filePath == "" {
		return ""
	}
	p := strings.TrimPrefix(filepath.ToSlash(filePath), "./")
	return "/" + strings.TrimPrefix(p, "/")
}
