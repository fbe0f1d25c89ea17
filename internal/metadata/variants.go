package metadata

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/charlesng35/classifieds/internal/models"
)

// ErrNoVariant is returned by Decode for category types without a schema.
var ErrNoVariant = errors.New("metadata: category type has no typed variant")

// Metadata is the category-specific attribute bag of an ad. Exactly one
// variant exists per category type that carries a schema.
type Metadata interface {
	CategoryType() models.CategoryType
}

type RealEstate struct {
	OfferType       string   `json:"offerType"`
	PropertyType    string   `json:"propertyType"`
	LivingArea      float64  `json:"livingArea"`
	Rooms           int      `json:"rooms"`
	Price           *float64 `json:"price,omitempty"`
	ColdRent        *float64 `json:"coldRent,omitempty"`
	Floor           *int     `json:"floor,omitempty"`
	YearBuilt       *int     `json:"yearBuilt,omitempty"`
	Furnished       *bool    `json:"furnished,omitempty"`
	Balcony         *bool    `json:"balcony,omitempty"`
	Elevator        *bool    `json:"elevator,omitempty"`
	ParkingIncluded *bool    `json:"parkingIncluded,omitempty"`
	Cellar          *bool    `json:"cellar,omitempty"`
	AdditionalCosts *float64 `json:"additionalCosts,omitempty"`
	Deposit         *float64 `json:"deposit,omitempty"`
}

func (RealEstate) CategoryType() models.CategoryType { return models.CategoryRealEstate }

type Vehicle struct {
	VehicleType          string   `json:"vehicleType"`
	Brand                string   `json:"brand"`
	Model                string   `json:"model"`
	Year                 int      `json:"year"`
	Mileage              float64  `json:"mileage"`
	FuelType             string   `json:"fuelType"`
	Transmission         string   `json:"transmission"`
	Condition            string   `json:"condition"`
	DamageStatus         string   `json:"damageStatus"`
	PostalCode           string   `json:"postalCode"`
	ContactName          string   `json:"contactName"`
	ContactPhone         string   `json:"contactPhone"`
	PowerHP              *float64 `json:"powerHP,omitempty"`
	InspectionValidUntil string   `json:"inspectionValidUntil,omitempty"`
}

func (Vehicle) CategoryType() models.CategoryType { return models.CategoryVehicles }

type Service struct {
	ServiceCategory string   `json:"serviceCategory"`
	PricingType     string   `json:"pricingType"`
	Price           *float64 `json:"price,omitempty"`
	ContactName     string   `json:"contactName"`
	ContactPhone    string   `json:"contactPhone"`
	ServiceRadius   *float64 `json:"serviceRadius,omitempty"`
	ExperienceYears *int     `json:"experienceYears,omitempty"`
	Certificates    string   `json:"certificates,omitempty"`
	ContactEmail    string   `json:"contactEmail,omitempty"`
}

func (Service) CategoryType() models.CategoryType { return models.CategoryServices }

type Job struct {
	JobTitle          string   `json:"jobTitle"`
	JobDescription    string   `json:"jobDescription"`
	JobType           string   `json:"jobType"`
	Industry          string   `json:"industry"`
	CompanyName       string   `json:"companyName"`
	ExperienceLevel   string   `json:"experienceLevel,omitempty"`
	EducationRequired string   `json:"educationRequired,omitempty"`
	LanguageRequired  string   `json:"languageRequired,omitempty"`
	RemotePossible    *bool    `json:"remotePossible,omitempty"`
	SalaryFrom        *float64 `json:"salaryFrom,omitempty"`
	SalaryTo          *float64 `json:"salaryTo,omitempty"`
	SalaryType        string   `json:"salaryType,omitempty"`
}

func (Job) CategoryType() models.CategoryType { return models.CategoryJobs }

func variantFor(categoryType models.CategoryType) (Metadata, bool) {
	switch categoryType {
	case models.CategoryRealEstate:
		return &RealEstate{}, true
	case models.CategoryVehicles:
		return &Vehicle{}, true
	case models.CategoryServices:
		return &Service{}, true
	case models.CategoryJobs:
		return &Job{}, true
	default:
		return nil, false
	}
}

// Decode maps a payload onto the variant for the category type. The payload
// should already have passed Normalize.
func Decode(categoryType models.CategoryType, payload map[string]any) (Metadata, error) {
	target, ok := variantFor(categoryType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoVariant, categoryType)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return nil, fmt.Errorf("metadata: build decoder: %w", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("metadata: decode %s: %w", categoryType, err)
	}

	return target, nil
}

// Encode renders a variant as JSON for storage.
func Encode(m Metadata) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Prepare validates and normalises a payload for the category type and
// returns the JSON to persist. Types without a schema store the payload as is.
func Prepare(categoryType models.CategoryType, payload map[string]any, opts ...Option) ([]byte, error) {
	schema := For(categoryType)
	if schema == nil {
		if payload == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(payload)
	}

	values, err := Normalize(schema, payload, opts...)
	if err != nil {
		return nil, err
	}
	variant, err := Decode(categoryType, values)
	if err != nil {
		return nil, err
	}
	return Encode(variant)
}
