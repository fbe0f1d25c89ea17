package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/metadata"
	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

// ErrCategoryNotFound indicates the category id does not resolve.
var ErrCategoryNotFound = apperrors.New("CATEGORY_NOT_FOUND", apperrors.KindNotFound, "Category not found", http.StatusNotFound)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// CreateCategoryInput describes a new category node.
type CreateCategoryInput struct {
	Name         string
	Slug         string
	ParentID     *string
	CategoryType *models.CategoryType
	SortOrder    int
}

// CategorySchema is the effective metadata schema of a category.
type CategorySchema struct {
	CategoryID   string              `json:"category_id"`
	CategoryType models.CategoryType `json:"category_type,omitempty"`
	Schema       *metadata.Schema    `json:"schema"`
}

// CategoryService reads and maintains the category tree. It is the tree
// collaborator the metadata resolver walks.
type CategoryService struct {
	db           *gorm.DB
	auditService *AuditService
	resolver     *metadata.Resolver
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB, audit *AuditService) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	svc := &CategoryService{db: db, auditService: audit}
	svc.resolver = metadata.NewResolver(svc)
	return svc, nil
}

// Resolver returns the schema resolver backed by this tree.
func (s *CategoryService) Resolver() *metadata.Resolver {
	return s.resolver
}

// Lookup implements metadata.CategoryTree.
func (s *CategoryService) Lookup(ctx context.Context, id string) (metadata.Node, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return metadata.Node{}, err
	}
	return metadata.Node{ID: category.ID, ParentID: category.ParentID, Type: category.CategoryType}, nil
}

// Get loads a single category.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("category service: load category: %w", err)
	}
	return &category, nil
}

// Tree returns the root categories with their direct children.
func (s *CategoryService) Tree(ctx context.Context) ([]models.Category, error) {
	ctx = ensureContext(ctx)

	var roots []models.Category
	if err := s.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, name")
		}).
		Order("sort_order, name").
		Find(&roots).Error; err != nil {
		return nil, fmt.Errorf("category service: list categories: %w", err)
	}
	return roots, nil
}

// Schema resolves the metadata schema that applies to ads in the category.
func (s *CategoryService) Schema(ctx context.Context, id string) (*CategorySchema, error) {
	schema, categoryType, err := s.resolver.Resolve(ensureContext(ctx), id)
	if err != nil {
		return nil, mapResolveError(err)
	}
	return &CategorySchema{CategoryID: id, CategoryType: categoryType, Schema: schema}, nil
}

// Create adds a category. Only root categories may declare a type.
func (s *CategoryService) Create(ctx context.Context, actor permissions.Principal, input CreateCategoryInput) (*models.Category, error) {
	ctx = ensureContext(ctx)

	if err := authorize(ctx, s.auditService, actor, permissions.CategoriesManage, "categories"); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	slug := slugify(input.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	parentID := trimmedPtr(input.ParentID)

	var fields []apperrors.FieldError
	if name == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Message: "is required"})
	}
	if slug == "" && name != "" {
		fields = append(fields, apperrors.FieldError{Field: "slug", Message: "must contain letters or digits"})
	}
	if input.CategoryType != nil {
		switch {
		case !input.CategoryType.Valid():
			fields = append(fields, apperrors.FieldError{Field: "category_type", Message: "is not a known category type"})
		case parentID != nil:
			fields = append(fields, apperrors.FieldError{Field: "category_type", Message: "only root categories declare a type"})
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationFailed(fields)
	}

	if parentID != nil {
		if _, err := s.Get(ctx, *parentID); err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return nil, apperrors.NewValidationFailed([]apperrors.FieldError{{Field: "parent_id", Message: "does not exist"}})
			}
			return nil, err
		}
	}

	category := &models.Category{
		Name:         name,
		Slug:         slug,
		ParentID:     parentID,
		CategoryType: input.CategoryType,
		SortOrder:    input.SortOrder,
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		switch {
		case isUniqueConstraintError(err):
			return nil, apperrors.ErrConflict.WithMessage("Category slug already exists")
		case isForeignKeyError(err):
			// parent removed between the lookup and the insert
			return nil, apperrors.NewValidationFailed([]apperrors.FieldError{{Field: "parent_id", Message: "does not exist"}})
		}
		return nil, fmt.Errorf("category service: create category: %w", err)
	}

	recordAudit(s.auditService, ctx, actorEntry(actor, "category.create", "category:"+category.ID, "success", map[string]any{
		"slug":      category.Slug,
		"parent_id": category.ParentID,
	}))
	return category, nil
}

func mapResolveError(err error) error {
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		return err
	case errors.Is(err, metadata.ErrCategoryCycle), errors.Is(err, metadata.ErrCategoryTooDeep):
		return apperrors.ErrInternalServer.WithInternal(err)
	default:
		return fmt.Errorf("category service: resolve schema: %w", err)
	}
}

func slugify(value string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
	return strings.Trim(slug, "-")
}
