package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogRegistered(t *testing.T) {
	ids := make([]string, 0)
	for _, perm := range All() {
		ids = append(ids, perm.ID)
	}

	require.Contains(t, ids, AdsApprove)
	require.Contains(t, ids, AdsReject)
	require.Contains(t, ids, AdsEdit)
	require.Contains(t, ids, PermissionsManage)
	require.Len(t, ids, 14)
	require.IsIncreasing(t, ids)
}

func TestParse(t *testing.T) {
	resource, action, err := Parse(" ads.approve ")
	require.NoError(t, err)
	require.Equal(t, "ads", resource)
	require.Equal(t, "approve", action)

	for _, id := range []string{"", "ads", "ads.", ".approve", "ads.approve.all", "Ads.Approve", "ads approve"} {
		_, _, err := Parse(id)
		require.ErrorIs(t, err, ErrMalformedID, id)
	}
}

func TestRegisterRejectsDuplicatesAndMalformed(t *testing.T) {
	require.Error(t, Register(nil))
	require.ErrorIs(t, Register(&Permission{ID: "bogus"}), ErrMalformedID)
	require.Error(t, Register(&Permission{ID: AdsApprove}))

	require.NoError(t, Register(&Permission{ID: "widgets.spin", Description: " spin "}))
	t.Cleanup(func() { unregister("widgets.spin") })

	perm, ok := Get("widgets.spin")
	require.True(t, ok)
	require.Equal(t, "widgets", perm.Resource)
	require.Equal(t, "spin", perm.Action)
	require.Equal(t, "spin", perm.Description)
}

func TestGetReturnsCopy(t *testing.T) {
	perm, ok := Get(AdsView)
	require.True(t, ok)
	perm.Description = "mutated"

	again, ok := Get(AdsView)
	require.True(t, ok)
	require.NotEqual(t, "mutated", again.Description)
}

func TestByResource(t *testing.T) {
	perms := ByResource("reports")
	require.Len(t, perms, 2)
	require.Equal(t, ReportsManage, perms[0].ID)
	require.Equal(t, ReportsView, perms[1].ID)

	require.Empty(t, ByResource("nothing"))
}
