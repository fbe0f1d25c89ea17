package metadata

import (
	"github.com/charlesng35/classifieds/internal/models"
)

var (
	OfferTypes    = []string{"rent", "sale"}
	PropertyTypes = []string{"apartment", "house", "commercial", "land", "parking"}
	Conditions    = []string{"new", "used"}
	DamageStates  = []string{"none", "accident"}
	PricingTypes  = []string{"fixed", "hourly", "negotiable"}
	JobTypes      = []string{"full-time", "part-time", "mini-job", "freelance", "internship"}
	SalaryTypes   = []string{"hourly", "monthly"}
)

var registry = map[models.CategoryType]*Schema{}

func init() {
	mustRegister(&Schema{
		Type: models.CategoryRealEstate,
		Fields: []FieldRule{
			Enum("offerType", OfferTypes...).Require(),
			Enum("propertyType", PropertyTypes...).Require(),
			Number("livingArea").Require().Positive(),
			Integer("rooms").Require().Positive(),
			Number("price").NonNegative().When("offerType", "sale"),
			Number("coldRent").NonNegative().When("offerType", "rent"),
			Integer("floor"),
			Integer("yearBuilt").From(1800).UpToYearsAhead(10),
			Bool("furnished"),
			Bool("balcony"),
			Bool("elevator"),
			Bool("parkingIncluded"),
			Bool("cellar"),
			Number("additionalCosts").NonNegative(),
			Number("deposit").NonNegative(),
		},
	})

	mustRegister(&Schema{
		Type: models.CategoryVehicles,
		Fields: []FieldRule{
			String("vehicleType").Require(),
			String("brand").Require(),
			String("model").Require(),
			Integer("year").Require().From(1900).UpToYearsAhead(1),
			Number("mileage").Require().NonNegative(),
			String("fuelType").Require(),
			String("transmission").Require(),
			Enum("condition", Conditions...).Require(),
			Enum("damageStatus", DamageStates...).Require(),
			String("postalCode").Require(),
			String("contactName").Require(),
			String("contactPhone").Require(),
			Number("powerHP").Positive(),
			Date("inspectionValidUntil"),
		},
	})

	mustRegister(&Schema{
		Type: models.CategoryServices,
		Fields: []FieldRule{
			String("serviceCategory").Require(),
			Enum("pricingType", PricingTypes...).Require(),
			Number("price").NonNegative().Unless("pricingType", "negotiable"),
			String("contactName").Require(),
			String("contactPhone").Require(),
			Number("serviceRadius").NonNegative(),
			Integer("experienceYears").NonNegative(),
			String("certificates"),
			Email("contactEmail"),
		},
	})

	mustRegister(&Schema{
		Type: models.CategoryJobs,
		Fields: []FieldRule{
			String("jobTitle").Require(),
			String("jobDescription").Require(),
			Enum("jobType", JobTypes...).Require(),
			String("industry").Require(),
			String("companyName").Require(),
			String("experienceLevel"),
			String("educationRequired"),
			String("languageRequired"),
			Bool("remotePossible"),
			Number("salaryFrom").NonNegative(),
			Number("salaryTo").NonNegative().NotBelow("salaryFrom"),
			Enum("salaryType", SalaryTypes...),
		},
	})
}

func mustRegister(schema *Schema) {
	if err := schema.check(); err != nil {
		panic(err)
	}
	registry[schema.Type] = schema
}

// For returns a copy of the schema registered for the category type, or nil
// for types that carry no metadata constraints (PERSONAL_HOME, MISC).
func For(categoryType models.CategoryType) *Schema {
	return registry[categoryType].Clone()
}

// Types lists the category types that have a schema, in enumeration order.
func Types() []models.CategoryType {
	var out []models.CategoryType
	for _, t := range models.CategoryTypes {
		if _, ok := registry[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
