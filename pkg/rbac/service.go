package rbac

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrymomot/filevault/pkg/scopes"
)

// Authorizer answers permission questions for a fixed set of roles.
type Authorizer interface {
	Can(role, permission string) error
	CanAny(role string, permissions ...string) error
	CanAll(role string, permissions ...string) error
	Permissions(role string) []string
}

type authorizer struct {
	// role name -> effective permissions, inheritance already resolved
	effective map[string][]string
}

// NewAuthorizer loads roles from source, validates them and precomputes
// each role's effective permissions.
func NewAuthorizer(ctx context.Context, source RoleSource) (Authorizer, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, ErrNoRoles
	}

	for name, role := range roles {
		for _, p := range role.Permissions {
			if !scopes.Valid(p) {
				return nil, fmt.Errorf("%w: role %q: %q", ErrInvalidPermission, name, p)
			}
		}
		for _, parent := range role.Inherits {
			if _, ok := roles[parent]; !ok {
				return nil, fmt.Errorf("%w: role %q inherits unknown role %q", ErrInvalidRole, name, parent)
			}
		}
	}

	a := &authorizer{effective: make(map[string][]string, len(roles))}
	for name := range roles {
		perms, err := resolve(roles, name, nil)
		if err != nil {
			return nil, err
		}
		a.effective[name] = scopes.Normalize(perms)
	}
	return a, nil
}

func resolve(roles map[string]Role, name string, path []string) ([]string, error) {
	if slices.Contains(path, name) {
		return nil, fmt.Errorf("%w: %v -> %s", ErrCircularInheritance, path, name)
	}
	if len(path) >= MaxInheritanceDepth {
		return nil, ErrInheritanceTooDeep
	}
	role := roles[name]
	perms := slices.Clone(role.Permissions)
	for _, parent := range role.Inherits {
		inherited, err := resolve(roles, parent, append(path, name))
		if err != nil {
			return nil, err
		}
		perms = append(perms, inherited...)
	}
	return perms, nil
}

func (a *authorizer) Can(role, permission string) error {
	perms, ok := a.effective[role]
	if !ok {
		return ErrInvalidRole
	}
	if !scopes.Has(perms, permission) {
		return ErrInsufficientPermission
	}
	return nil
}

func (a *authorizer) CanAny(role string, permissions ...string) error {
	var err error
	for _, p := range permissions {
		if err = a.Can(role, p); err == nil {
			return nil
		}
		if errors.Is(err, ErrInvalidRole) {
			return err
		}
	}
	if err == nil {
		return ErrInsufficientPermission
	}
	return err
}

func (a *authorizer) CanAll(role string, permissions ...string) error {
	for _, p := range permissions {
		if err := a.Can(role, p); err != nil {
			return err
		}
	}
	return nil
}

func (a *authorizer) Permissions(role string) []string {
	return slices.Clone(a.effective[role])
}
