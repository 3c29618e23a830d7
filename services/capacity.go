package services

import (
	"edumitra/models"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdmitStudent reserves a seat in a batch for a student. The capacity check
// and the increment run as a single conditional UPDATE, so two concurrent
// admissions can never both take the last seat: the losing request sees
// zero rows affected. The row stays write-locked for the rest of tx, which
// serializes the follow-up append to the member list.
//
// Must be called inside a transaction; the caller decides whether the seat
// sticks (commit) or is released (rollback).
func AdmitStudent(tx *gorm.DB, batchID uint, userID uint) (*models.Batch, error) {
	result := tx.Model(&models.Batch{}).
		Where("id = ? AND is_deleted = false AND enrolled_students < capacity", batchID).
		Update("enrolled_students", gorm.Expr("enrolled_students + 1"))
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Either the batch is missing or it is full; one read tells us which.
		var batch models.Batch
		if err := tx.Where("id = ? AND is_deleted = false", batchID).First(&batch).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, newError(KindNotFound, fmt.Sprintf("batch %d not found", batchID))
			}
			return nil, err
		}
		return nil, newError(KindCapacityExceeded,
			fmt.Sprintf("batch %d is full (%d/%d seats taken)", batchID, batch.EnrolledStudents, batch.Capacity))
	}

	var batch models.Batch
	if err := tx.Where("id = ?", batchID).First(&batch).Error; err != nil {
		return nil, err
	}

	batch.EnrolledStudentIDs = append(batch.EnrolledStudentIDs, userID)
	if err := tx.Model(&batch).Update("enrolled_student_ids", batch.EnrolledStudentIDs).Error; err != nil {
		return nil, err
	}

	return &batch, nil
}

// ReleaseSeat gives a seat back after a cancellation or unenroll. This is
// the only path that decrements enrolled_students.
func ReleaseSeat(tx *gorm.DB, batchID uint, userID uint) error {
	var batch models.Batch
	if err := tx.Where("id = ? AND is_deleted = false", batchID).First(&batch).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return newError(KindNotFound, fmt.Sprintf("batch %d not found", batchID))
		}
		return err
	}

	members := make([]uint, 0, len(batch.EnrolledStudentIDs))
	found := false
	for _, id := range batch.EnrolledStudentIDs {
		if id == userID && !found {
			found = true
			continue
		}
		members = append(members, id)
	}
	if !found {
		return nil // student holds no seat in this batch
	}

	return tx.Model(&batch).Updates(map[string]interface{}{
		"enrolled_students":    gorm.Expr("enrolled_students - 1"),
		"enrolled_student_ids": datatypes.JSONSlice[uint](members),
	}).Error
}
