package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

func TestReportServiceLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	owner := f.principal(t, f.createUser(t, "seller", models.RoleUser))
	reporter := f.principal(t, f.createUser(t, "buyer", models.RoleUser))
	ad := f.createVehicleAd(t, owner)

	report, err := f.reports.Create(ctx, reporter, CreateReportInput{AdID: &ad.ID, Type: "Fraud", Reason: "asks for prepayment"})
	require.NoError(t, err)
	require.Equal(t, models.ReportPending, report.Status)
	require.Equal(t, "fraud", report.Type)

	moderator := f.createUser(t, "moderator", models.RoleAdmin)
	f.grant(t, moderator, permissions.ReportsView)

	reports, total, err := f.reports.List(ctx, f.principal(t, moderator), ListReportsOptions{Filters: ReportFilters{AdID: ad.ID}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, report.ID, reports[0].ID)

	_, err = f.reports.Update(ctx, f.principal(t, moderator), report.ID, UpdateReportInput{Status: models.ReportResolved})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	f.grant(t, moderator, permissions.ReportsManage)
	notes := "ad removed"
	updated, err := f.reports.Update(ctx, f.principal(t, moderator), report.ID, UpdateReportInput{Status: models.ReportResolved, AdminNotes: &notes})
	require.NoError(t, err)
	require.Equal(t, models.ReportResolved, updated.Status)
	require.Equal(t, moderator.ID, *updated.HandledBy)
	require.NotNil(t, updated.HandledAt)
	require.Equal(t, notes, updated.AdminNotes)
}

func TestReportServiceValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	reporter := f.principal(t, f.createUser(t, "buyer", models.RoleUser))

	_, err := f.reports.Create(ctx, reporter, CreateReportInput{Type: "spam", Reason: "x"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	adID, messageID := "a", "m"
	_, err = f.reports.Create(ctx, reporter, CreateReportInput{AdID: &adID, MessageID: &messageID, Type: "spam", Reason: "x"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.reports.Create(ctx, reporter, CreateReportInput{MessageID: &messageID, Type: "bogus", Reason: " "})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	require.Len(t, apperrors.FromError(err).Fields, 2)

	_, err = f.reports.Create(ctx, reporter, CreateReportInput{AdID: &adID, Type: "spam", Reason: "x"})
	require.ErrorIs(t, err, ErrAdNotFound)

	_, err = f.reports.Create(ctx, reporter, CreateReportInput{MessageID: &messageID, Type: "spam", Reason: "rude"})
	require.NoError(t, err)

	_, err = f.reports.Create(ctx, permissions.Principal{}, CreateReportInput{MessageID: &messageID, Type: "spam", Reason: "rude"})
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
