package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Permission describes a catalog entry identified by "resource.action".
type Permission struct {
	ID          string `json:"id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

type permissionRegistry struct {
	mu          sync.RWMutex
	permissions map[string]*Permission
}

var globalRegistry = &permissionRegistry{
	permissions: make(map[string]*Permission),
}

var (
	errNilPermission = errors.New("permission: nil definition")
	errDuplicateID   = errors.New("permission: already registered")
	// ErrMalformedID indicates a permission string that is not of the form resource.action.
	ErrMalformedID = errors.New("permission: id must be resource.action")
	// ErrUnknownPermission indicates a permission lookup failed because it has not been registered.
	ErrUnknownPermission = errors.New("permission: unknown permission")
)

// Parse splits a permission string into its resource and action components.
func Parse(id string) (resource, action string, err error) {
	id = strings.TrimSpace(id)
	resource, action, found := strings.Cut(id, ".")
	if !found || !validSegment(resource) || !validSegment(action) {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return resource, action, nil
}

func validSegment(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

// Register adds a permission definition to the global registry.
func Register(perm *Permission) error {
	if perm == nil {
		return errNilPermission
	}

	resource, action, err := Parse(perm.ID)
	if err != nil {
		return err
	}

	def := &Permission{
		ID:          resource + "." + action,
		Resource:    resource,
		Action:      action,
		Description: strings.TrimSpace(perm.Description),
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.permissions[def.ID]; exists {
		return fmt.Errorf("%w: %s", errDuplicateID, def.ID)
	}

	globalRegistry.permissions[def.ID] = def
	return nil
}

// Get returns a copy of the permission definition when registered.
func Get(id string) (*Permission, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	perm, ok := globalRegistry.permissions[strings.TrimSpace(id)]
	if !ok {
		return nil, false
	}
	cp := *perm
	return &cp, true
}

// Known reports whether the id is a registered permission.
func Known(id string) bool {
	_, ok := Get(id)
	return ok
}

// All returns the catalog sorted by id.
func All() []Permission {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make([]Permission, 0, len(globalRegistry.permissions))
	for _, perm := range globalRegistry.permissions {
		out = append(out, *perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByResource gathers permissions registered for the specified resource.
func ByResource(resource string) []Permission {
	resource = strings.TrimSpace(resource)
	var perms []Permission
	for _, perm := range All() {
		if perm.Resource == resource {
			perms = append(perms, perm)
		}
	}
	return perms
}

// unregister removes a definition. Intended for testing only.
func unregister(id string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.permissions, id)
}
