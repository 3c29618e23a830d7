package services

import (
	"sync"
	"testing"

	"edumitra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAdmitStudentFillsBatch(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	batch := seedBatch(t, db, course.ID, 2)

	for _, userID := range []uint{11, 12} {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := AdmitStudent(tx, batch.ID, userID)
			return err
		})
		require.NoError(t, err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := AdmitStudent(tx, batch.ID, 13)
		return err
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCapacityExceeded))

	var reloaded models.Batch
	require.NoError(t, db.First(&reloaded, batch.ID).Error)
	assert.Equal(t, 2, reloaded.EnrolledStudents)
	assert.Equal(t, []uint{11, 12}, []uint(reloaded.EnrolledStudentIDs))
}

func TestAdmitStudentUnknownBatch(t *testing.T) {
	db := newTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := AdmitStudent(tx, 4242, 1)
		return err
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestReleaseSeatReopensBatch(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	batch := seedBatch(t, db, course.ID, 1)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := AdmitStudent(tx, batch.ID, 21)
		return err
	}))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return ReleaseSeat(tx, batch.ID, 21)
	}))

	var reloaded models.Batch
	require.NoError(t, db.First(&reloaded, batch.ID).Error)
	assert.Equal(t, 0, reloaded.EnrolledStudents)
	assert.Empty(t, []uint(reloaded.EnrolledStudentIDs))

	// The freed seat is admittable again.
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := AdmitStudent(tx, batch.ID, 22)
		return err
	}))
}

func TestReleaseSeatForNonMemberIsNoop(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	batch := seedBatch(t, db, course.ID, 3)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := AdmitStudent(tx, batch.ID, 31)
		return err
	}))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return ReleaseSeat(tx, batch.ID, 999)
	}))

	var reloaded models.Batch
	require.NoError(t, db.First(&reloaded, batch.ID).Error)
	assert.Equal(t, 1, reloaded.EnrolledStudents)
}

// Ten students race for two seats; exactly two may win and the member list
// must match the counter.
func TestAdmitStudentConcurrent(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	batch := seedBatch(t, db, course.ID, 2)

	const contenders = 10
	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			results <- db.Transaction(func(tx *gorm.DB) error {
				_, err := AdmitStudent(tx, batch.ID, userID)
				return err
			})
		}(uint(100 + i))
	}
	wg.Wait()
	close(results)

	admitted, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			admitted++
		case IsKind(err, KindCapacityExceeded):
			rejected++
		default:
			t.Fatalf("unexpected admission error: %v", err)
		}
	}

	assert.Equal(t, 2, admitted)
	assert.Equal(t, contenders-2, rejected)

	var reloaded models.Batch
	require.NoError(t, db.First(&reloaded, batch.ID).Error)
	assert.Equal(t, 2, reloaded.EnrolledStudents)
	assert.Len(t, []uint(reloaded.EnrolledStudentIDs), 2)
}
