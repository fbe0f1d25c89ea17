package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/response"
	appValidator "github.com/charlesng35/classifieds/pkg/validator"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, validationError(err))
		return false
	}

	return true
}

func validationError(err error) error {
	var ve appValidator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return appErrors.NewValidationFailed(ve.FieldErrors())
	}
	return appErrors.NewBadRequest("invalid request payload")
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// parseFloatQuery returns nil when the parameter is absent or malformed.
func parseFloatQuery(c *gin.Context, key string) *float64 {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// pagination reads page and per_page, clamped the same way the services clamp them.
func pagination(c *gin.Context) (int, int) {
	page := parseIntQuery(c, "page", 1)
	if page <= 0 {
		page = 1
	}
	perPage := parseIntQuery(c, "per_page", defaultPerPage)
	if perPage <= 0 || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	return page, perPage
}
