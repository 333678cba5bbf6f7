package service

import (
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Material{},
		&models.MaterialContent{},
		&models.Assessment{},
		&models.Question{},
		&models.QuestionOption{},
		&models.Submission{},
		&models.MultipleChoiceAnswer{},
		&models.EssayAnswer{},
		&models.Notification{},
	))

	return db
}

// fixture seeds one course, one material and one assessment with a
// multiple-choice question worth 10 points and an essay question worth 10
// points, owned by teacher 1.
type fixture struct {
	course     models.Course
	material   models.Material
	assessment models.Assessment
	mcq        models.Question
	essay      models.Question
	correct    models.QuestionOption
	wrong      models.QuestionOption
}

func seedAssessment(t *testing.T, db *gorm.DB, timeLimitMinutes int) fixture {
	t.Helper()

	f := fixture{}

	f.course = models.Course{Title: "Fisika Dasar", CreatedBy: 1}
	require.NoError(t, db.Create(&f.course).Error)

	f.material = models.Material{CourseID: f.course.ID, Title: "Hukum Newton", CreatedBy: 1}
	require.NoError(t, db.Create(&f.material).Error)

	f.assessment = models.Assessment{
		MaterialID:       f.material.ID,
		Title:            "Kuis Hukum Newton",
		TimeLimitMinutes: timeLimitMinutes,
		TotalWeight:      100,
		CreatedBy:        1,
	}
	require.NoError(t, db.Create(&f.assessment).Error)

	f.mcq = models.Question{
		AssessmentID: f.assessment.ID,
		Type:         models.QuestionTypeMultipleChoice,
		Prompt:       "Berapakah percepatan benda 2 kg yang dikenai gaya 10 N?",
		Points:       10,
	}
	require.NoError(t, db.Create(&f.mcq).Error)

	f.correct = models.QuestionOption{QuestionID: f.mcq.ID, Label: "5 m/s^2", IsCorrect: true}
	require.NoError(t, db.Create(&f.correct).Error)

	f.wrong = models.QuestionOption{QuestionID: f.mcq.ID, Label: "20 m/s^2"}
	require.NoError(t, db.Create(&f.wrong).Error)

	f.essay = models.Question{
		AssessmentID: f.assessment.ID,
		Type:         models.QuestionTypeEssay,
		Prompt:       "Jelaskan hukum ketiga Newton dengan contoh sehari-hari.",
		Points:       10,
	}
	require.NoError(t, db.Create(&f.essay).Error)

	return f
}
