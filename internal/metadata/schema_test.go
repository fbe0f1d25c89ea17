package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/classifieds/internal/models"
)

func TestRegisteredTypes(t *testing.T) {
	require.Equal(t, []models.CategoryType{
		models.CategoryRealEstate,
		models.CategoryVehicles,
		models.CategoryServices,
		models.CategoryJobs,
	}, Types())
}

func TestForReturnsCopy(t *testing.T) {
	schema := For(models.CategoryRealEstate)
	schema.Fields[0].Values[0] = "mutated"
	schema.Fields = schema.Fields[:1]

	fresh := For(models.CategoryRealEstate)
	require.Equal(t, OfferTypes, fresh.Fields[0].Values)
	require.Greater(t, len(fresh.Fields), 1)
}

func TestSchemaFieldLookup(t *testing.T) {
	schema := For(models.CategoryRealEstate)
	rule, ok := schema.Field("price")
	require.True(t, ok)
	require.NotNil(t, rule.Condition)
	require.Equal(t, "offerType", rule.Condition.Field)
	require.False(t, rule.Required)

	_, ok = schema.Field("mileage")
	require.False(t, ok)

	var none *Schema
	require.Nil(t, none.Names())
}

func TestSchemaCheck(t *testing.T) {
	require.Error(t, (&Schema{Type: "X", Fields: []FieldRule{String("a"), String("a")}}).check())
	require.Error(t, (&Schema{Type: "X", Fields: []FieldRule{Number("p").When("kind", "a"), Enum("kind", "a")}}).check())
	require.Error(t, (&Schema{Type: "X", Fields: []FieldRule{Enum("kind")}}).check())
	require.Error(t, (&Schema{Type: "X", Fields: []FieldRule{String("from"), Number("to").NotBelow("from")}}).check())
	require.NoError(t, (&Schema{Type: "X", Fields: []FieldRule{Enum("kind", "a"), Number("p").When("kind", "a")}}).check())
}
