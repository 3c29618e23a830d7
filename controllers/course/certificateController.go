package courseController

import (
	"edumitra/database"
	"edumitra/middleware"
	"edumitra/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestCertificate issues a certificate for a completed enrollment. The
// operation is idempotent: re-requesting returns the existing certificate.
func RequestCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var enrollment models.Enrollment
	err := db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).
		Order("created_at desc").First(&enrollment).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not enrolled in this course!", nil)
	}

	if enrollment.Status != models.StatusCompleted {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Complete the course before requesting a certificate!", nil)
	}

	var existing models.Certificate
	if err := db.Where("enrollment_id = ? AND is_deleted = false", enrollment.ID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate already issued!", existing)
	}

	// Final score: average over the enrollment's assessment results.
	var finalScore float64
	db.Model(&models.AssessmentResult{}).
		Where("enrollment_id = ? AND is_deleted = false", enrollment.ID).
		Select("COALESCE(AVG(score / max_score * 100), 0)").
		Scan(&finalScore)

	certificate := models.Certificate{
		UserID:        userID,
		CourseID:      uint(courseID),
		EnrollmentID:  enrollment.ID,
		CertificateID: uuid.New().String(),
		FinalScore:    finalScore,
		IssuedAt:      time.Now(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&certificate).Error; err != nil {
			return err
		}
		return tx.Model(&enrollment).Updates(map[string]interface{}{
			"certificate_issued": true,
			"certificate_id":     certificate.CertificateID,
		}).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully!", certificate)
}

// GetUserCertificates lists all certificates issued to the user.
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certificates []models.Certificate
	err := database.Database.Db.Where("user_id = ? AND is_deleted = false", userID).
		Order("issued_at desc").Find(&certificates).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
	})
}
