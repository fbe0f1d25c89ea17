package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charlesng35/classifieds/internal/models"
)

const defaultMaxDepth = 16

var (
	// ErrCategoryCycle is returned when walking parents revisits a category.
	ErrCategoryCycle = errors.New("metadata: category tree contains a cycle")
	// ErrCategoryTooDeep is returned when the walk exceeds the depth limit.
	ErrCategoryTooDeep = errors.New("metadata: category tree too deep")
)

// Node is the read-only view of a category the resolver needs.
type Node struct {
	ID       string
	ParentID *string
	Type     *models.CategoryType
}

// CategoryTree provides read access to the category hierarchy.
type CategoryTree interface {
	Lookup(ctx context.Context, id string) (Node, error)
}

// Resolver finds the metadata schema that applies to a category.
type Resolver struct {
	tree     CategoryTree
	maxDepth int
}

// NewResolver builds a resolver backed by the provided tree.
func NewResolver(tree CategoryTree) *Resolver {
	return &Resolver{tree: tree, maxDepth: defaultMaxDepth}
}

// Resolve walks from the category up to the nearest node declaring a type and
// returns the schema for that type. The schema is nil when no ancestor
// declares a type or the type carries no constraints.
func (r *Resolver) Resolve(ctx context.Context, categoryID string) (*Schema, models.CategoryType, error) {
	categoryType, err := r.ResolveType(ctx, categoryID)
	if err != nil {
		return nil, "", err
	}
	if categoryType == "" {
		return nil, "", nil
	}
	return For(categoryType), categoryType, nil
}

// ResolveType returns the effective category type, or "" for a generic chain.
func (r *Resolver) ResolveType(ctx context.Context, categoryID string) (models.CategoryType, error) {
	if r == nil || r.tree == nil {
		return "", errors.New("metadata: resolver has no category tree")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	visited := make(map[string]struct{})
	current := strings.TrimSpace(categoryID)
	for depth := 0; current != ""; depth++ {
		if depth >= r.maxDepth {
			return "", fmt.Errorf("%w: %s", ErrCategoryTooDeep, categoryID)
		}
		if _, seen := visited[current]; seen {
			return "", fmt.Errorf("%w: %s", ErrCategoryCycle, current)
		}
		visited[current] = struct{}{}

		node, err := r.tree.Lookup(ctx, current)
		if err != nil {
			return "", err
		}
		if node.Type != nil && *node.Type != "" {
			return *node.Type, nil
		}
		if node.ParentID == nil {
			break
		}
		current = strings.TrimSpace(*node.ParentID)
	}

	return "", nil
}
