package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/models"
	"github.com/fisikaku/fisikaku-api/internal/repository"
)

func newNotificationService(t *testing.T, db *gorm.DB) NotificationService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewNotificationService(repository.NewNotificationRepository(db), nil, "", validate, testLogger())
}

func TestPublishSanitizesMessage(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationService(t, db)

	response, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  2,
		Type:    models.NotificationTypeGraded,
		Message: `Nilai kamu sudah keluar <script>alert("x")</script>`,
	})
	require.NoError(t, err)
	require.Equal(t, "Nilai kamu sudah keluar", response.Message)
	require.False(t, response.Read)
}

func TestPublishRejectsScriptOnlyMessage(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationService(t, db)

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  2,
		Type:    models.NotificationTypeGraded,
		Message: `<script>alert("x")</script>`,
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationService(t, db)
	ctx := context.Background()

	published, err := svc.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  2,
		Type:    models.NotificationTypeGraded,
		Message: "Penilaian selesai.",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, published.ID, 7)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	updated, err := svc.MarkRead(ctx, published.ID, 2)
	require.NoError(t, err)
	require.True(t, updated.Read)
}

func TestListReturnsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationService(t, db)
	ctx := context.Background()

	for _, message := range []string{"pertama", "kedua", "ketiga"} {
		_, err := svc.Publish(ctx, dto.NotificationCreateRequest{
			UserID:  2,
			Type:    models.NotificationTypeGraded,
			Message: message,
		})
		require.NoError(t, err)
	}

	notifications, err := svc.List(ctx, 2, 2, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	require.Equal(t, "ketiga", notifications[0].Message)

	rest, err := svc.List(ctx, 2, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, "pertama", rest[0].Message)
}
