package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/handlers/testutil"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
)

type adPayload struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Status          string         `json:"status"`
	Version         int64          `json:"version"`
	Views           int64          `json:"views"`
	Condition       string         `json:"condition"`
	RejectionReason *string        `json:"rejection_reason"`
	Metadata        map[string]any `json:"metadata"`
}

type statusChangePayload struct {
	Action         string  `json:"action"`
	FromStatus     string  `json:"from_status"`
	ToStatus       string  `json:"to_status"`
	AccessPath     string  `json:"access_path"`
	PermissionUsed *string `json:"permission_used"`
}

func vehicleAdBody(env *testutil.Env) map[string]any {
	return map[string]any{
		"title":       "VW Golf 1.4",
		"description": "Well maintained, full service history",
		"price":       8900,
		"category_id": env.CategoryID("vehicles"),
		"metadata": map[string]any{
			"vehicleType":  "car",
			"brand":        "VW",
			"model":        "Golf",
			"year":         2018,
			"mileage":      85000,
			"fuelType":     "petrol",
			"transmission": "manual",
			"condition":    "used",
			"damageStatus": "none",
			"postalCode":   "10115",
			"contactName":  "Sam",
			"contactPhone": "+49 30 1234",
		},
	}
}

func createAd(t *testing.T, env *testutil.Env, token string) adPayload {
	t.Helper()
	resp := env.Request(http.MethodPost, "/api/ads", vehicleAdBody(env), token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var ad adPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &ad)
	return ad
}

func TestAdHandler_ModerationFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.CreateUser(models.RoleUser)
	ownerToken := env.Token(owner)
	moderator := env.CreateUser(models.RoleAdmin)
	env.Grant(moderator, permissions.AdsView, permissions.AdsApprove)
	modToken := env.Token(moderator)

	ad := createAd(t, env, ownerToken)
	require.Equal(t, string(models.AdStatusPendingApproval), ad.Status)
	require.Equal(t, "used", ad.Condition)

	// pending ads are invisible to the public
	require.Equal(t, http.StatusNotFound, env.Request(http.MethodGet, "/api/ads/"+ad.ID, nil, "").Code)

	queue := env.Request(http.MethodGet, "/api/admin/ads?status=pending_approval", nil, modToken)
	require.Equal(t, http.StatusOK, queue.Code, queue.Body.String())
	queuePayload := testutil.DecodeResponse(t, queue)
	require.Equal(t, 1, queuePayload.Meta.Total)

	approved := env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/approve", nil, modToken)
	require.Equal(t, http.StatusOK, approved.Code, approved.Body.String())
	var approvedAd adPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, approved).Data, &approvedAd)
	require.Equal(t, string(models.AdStatusApproved), approvedAd.Status)
	require.Equal(t, int64(2), approvedAd.Version)

	again := env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/approve", nil, modToken)
	require.Equal(t, http.StatusConflict, again.Code)
	require.Equal(t, "InvalidTransition", string(testutil.DecodeResponse(t, again).Error.Kind))

	public := env.Request(http.MethodGet, "/api/ads/"+ad.ID, nil, "")
	require.Equal(t, http.StatusOK, public.Code)
	var publicAd adPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, public).Data, &publicAd)
	require.Equal(t, int64(1), publicAd.Views)

	list := env.Request(http.MethodGet, "/api/ads?category_id="+env.CategoryID("vehicles"), nil, "")
	require.Equal(t, http.StatusOK, list.Code)
	require.Equal(t, 1, testutil.DecodeResponse(t, list).Meta.Total)

	history := env.Request(http.MethodGet, "/api/ads/"+ad.ID+"/history", nil, ownerToken)
	require.Equal(t, http.StatusOK, history.Code, history.Body.String())
	var changes []statusChangePayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, history).Data, &changes)
	require.Len(t, changes, 2)
	require.Equal(t, "create", changes[0].Action)
	require.Equal(t, "owner", changes[0].AccessPath)
	require.Equal(t, "approve", changes[1].Action)
	require.Equal(t, "admin", changes[1].AccessPath)
	require.NotNil(t, changes[1].PermissionUsed)
	require.Equal(t, permissions.AdsApprove, *changes[1].PermissionUsed)
}

func TestAdHandler_RejectNeedsPermissionAndReason(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.CreateUser(models.RoleUser)
	ownerToken := env.Token(owner)
	approver := env.CreateUser(models.RoleAdmin)
	env.Grant(approver, permissions.AdsApprove)
	rejecter := env.CreateUser(models.RoleAdmin)
	env.Grant(rejecter, permissions.AdsReject)

	ad := createAd(t, env, ownerToken)

	// regular users never reach the admin group
	require.Equal(t, http.StatusForbidden, env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/reject", map[string]string{"reason": "spam"}, ownerToken).Code)

	denied := env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/reject", map[string]string{"reason": "spam"}, env.Token(approver))
	require.Equal(t, http.StatusForbidden, denied.Code)
	require.Equal(t, "Forbidden", string(testutil.DecodeResponse(t, denied).Error.Kind))

	blank := env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/reject", nil, env.Token(rejecter))
	require.Equal(t, http.StatusUnprocessableEntity, blank.Code, blank.Body.String())
	blankPayload := testutil.DecodeResponse(t, blank)
	require.Len(t, blankPayload.Error.Fields, 1)
	require.Equal(t, "reason", blankPayload.Error.Fields[0].Field)

	rejected := env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/reject", map[string]string{"reason": "Photos missing"}, env.Token(rejecter))
	require.Equal(t, http.StatusOK, rejected.Code, rejected.Body.String())
	var rejectedAd adPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, rejected).Data, &rejectedAd)
	require.Equal(t, string(models.AdStatusRejected), rejectedAd.Status)
	require.Equal(t, "Photos missing", *rejectedAd.RejectionReason)

	notifications := env.Request(http.MethodGet, "/api/notifications", nil, ownerToken)
	require.Equal(t, http.StatusOK, notifications.Code)
	var items []struct {
		ID       string         `json:"id"`
		Message  string         `json:"message"`
		IsRead   bool           `json:"is_read"`
		Metadata map[string]any `json:"metadata"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, notifications).Data, &items)
	require.Len(t, items, 1)
	require.Equal(t, "Photos missing", items[0].Message)
	require.Equal(t, ad.ID, items[0].Metadata["ad_id"])
	require.False(t, items[0].IsRead)

	read := env.Request(http.MethodPost, "/api/notifications/"+items[0].ID+"/read", nil, ownerToken)
	require.Equal(t, http.StatusOK, read.Code, read.Body.String())

	stranger := env.CreateUser(models.RoleUser)
	require.Equal(t, http.StatusNotFound, env.Request(http.MethodPost, "/api/notifications/"+items[0].ID+"/read", nil, env.Token(stranger)).Code)
}

func TestAdHandler_SuspendRequiresConfirmation(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.CreateUser(models.RoleUser)
	root := env.CreateUser(models.RoleSuperAdmin)
	rootToken := env.Token(root)

	ad := createAd(t, env, env.Token(owner))
	require.Equal(t, http.StatusOK, env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/approve", nil, rootToken).Code)

	unconfirmed := env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/suspend", map[string]bool{"confirmed": false}, rootToken)
	require.Equal(t, http.StatusUnprocessableEntity, unconfirmed.Code, unconfirmed.Body.String())

	suspended := env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/suspend", map[string]bool{"confirmed": true}, rootToken)
	require.Equal(t, http.StatusOK, suspended.Code, suspended.Body.String())
	require.Equal(t, http.StatusNotFound, env.Request(http.MethodGet, "/api/ads/"+ad.ID, nil, "").Code)

	restored := env.Request(http.MethodPost, "/api/admin/ads/"+ad.ID+"/unsuspend", nil, rootToken)
	require.Equal(t, http.StatusOK, restored.Code, restored.Body.String())
	var restoredAd adPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, restored).Data, &restoredAd)
	require.Equal(t, string(models.AdStatusApproved), restoredAd.Status)
}

func TestAdHandler_CreateValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.CreateUser(models.RoleUser)

	body := vehicleAdBody(env)
	body["title"] = ""
	body["price"] = -5
	metadata := body["metadata"].(map[string]any)
	delete(metadata, "brand")

	resp := env.Request(http.MethodPost, "/api/ads", body, env.Token(owner))
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())

	payload := testutil.DecodeResponse(t, resp)
	fields := make([]string, 0, len(payload.Error.Fields))
	for _, field := range payload.Error.Fields {
		fields = append(fields, field.Field)
	}
	require.Equal(t, []string{"title", "price", "metadata.brand"}, fields)
}

func TestAdHandler_OwnerEditAndDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.CreateUser(models.RoleUser)
	ownerToken := env.Token(owner)
	other := env.CreateUser(models.RoleUser)

	ad := createAd(t, env, ownerToken)

	forbidden := env.Request(http.MethodPatch, "/api/ads/"+ad.ID, map[string]any{"title": "Hijacked"}, env.Token(other))
	require.Equal(t, http.StatusForbidden, forbidden.Code)

	stale := env.Request(http.MethodPatch, "/api/ads/"+ad.ID, map[string]any{"title": "Renamed", "version": 7}, ownerToken)
	require.Equal(t, http.StatusConflict, stale.Code)

	updated := env.Request(http.MethodPatch, "/api/ads/"+ad.ID, map[string]any{"title": "Renamed", "version": ad.Version}, ownerToken)
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	var updatedAd adPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, updated).Data, &updatedAd)
	require.Equal(t, "Renamed", updatedAd.Title)
	require.Equal(t, ad.Version+1, updatedAd.Version)

	mine := env.Request(http.MethodGet, "/api/ads/mine", nil, ownerToken)
	require.Equal(t, http.StatusOK, mine.Code)
	require.Equal(t, 1, testutil.DecodeResponse(t, mine).Meta.Total)

	require.Equal(t, http.StatusForbidden, env.Request(http.MethodDelete, "/api/ads/"+ad.ID, nil, env.Token(other)).Code)
	require.Equal(t, http.StatusOK, env.Request(http.MethodDelete, "/api/ads/"+ad.ID, nil, ownerToken).Code)

	mine = env.Request(http.MethodGet, "/api/ads/mine", nil, ownerToken)
	require.Equal(t, 0, testutil.DecodeResponse(t, mine).Meta.Total)
}
