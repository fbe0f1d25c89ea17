package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/models"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

func TestNotificationServiceCreateAndList(t *testing.T) {
	f := newServiceFixture(t)
	user := f.createUser(t, "seller", models.RoleUser)
	ctx := context.Background()

	created, err := f.notifications.Create(ctx, CreateNotificationInput{
		UserID:   user.ID,
		Type:     "ad.expiring",
		Title:    " Expiring soon ",
		Message:  "Your ad expires tomorrow",
		Metadata: map[string]any{"ad_id": "a1"},
	})
	require.NoError(t, err)
	require.Equal(t, "Expiring soon", created.Title)
	require.Equal(t, "a1", created.Metadata["ad_id"])

	items, total, err := f.notifications.ListForUser(ctx, ListNotificationsInput{UserID: user.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	require.False(t, items[0].IsRead)

	_, err = f.notifications.Create(ctx, CreateNotificationInput{UserID: user.ID})
	require.Error(t, err)
	_, _, err = f.notifications.ListForUser(ctx, ListNotificationsInput{})
	require.Error(t, err)
}

func TestNotificationServiceMarkRead(t *testing.T) {
	f := newServiceFixture(t)
	user := f.createUser(t, "seller", models.RoleUser)
	other := f.createUser(t, "other", models.RoleUser)
	ctx := context.Background()

	require.NoError(t, f.notifications.NotifyRejection(ctx, user.ID, "ad-1", "blurry photos"))

	items, _, err := f.notifications.ListForUser(ctx, ListNotificationsInput{UserID: user.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, NotificationAdRejected, items[0].Type)
	require.Equal(t, "blurry photos", items[0].Message)

	_, err = f.notifications.MarkRead(ctx, other.ID, items[0].ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	read, err := f.notifications.MarkRead(ctx, user.ID, items[0].ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	unread, total, err := f.notifications.ListForUser(ctx, ListNotificationsInput{UserID: user.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Empty(t, unread)
	require.Zero(t, total)
}

func TestNotificationServicePagingAndMarkAllRead(t *testing.T) {
	f := newServiceFixture(t)
	user := f.createUser(t, "seller", models.RoleUser)
	other := f.createUser(t, "other", models.RoleUser)
	ctx := context.Background()

	for _, reason := range []string{"no price", "wrong category", "duplicate"} {
		require.NoError(t, f.notifications.NotifyRejection(ctx, user.ID, "ad-x", reason))
	}
	require.NoError(t, f.notifications.NotifyRejection(ctx, other.ID, "ad-y", "spam"))

	page, total, err := f.notifications.ListForUser(ctx, ListNotificationsInput{UserID: user.ID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, page, 1)

	changed, err := f.notifications.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, changed)

	changed, err = f.notifications.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, changed)

	_, unread, err := f.notifications.ListForUser(ctx, ListNotificationsInput{UserID: other.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)
}
