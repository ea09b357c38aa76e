package rbac

import "errors"

var (
	ErrInvalidRole            = errors.New("rbac.invalid_role")
	ErrInsufficientPermission = errors.New("rbac.insufficient_permissions")
	ErrCircularInheritance    = errors.New("rbac.circular_inheritance")
	ErrInheritanceTooDeep     = errors.New("rbac.inheritance_too_deep")
	ErrInvalidPermission      = errors.New("rbac.invalid_permission")
	ErrNoRoles                = errors.New("rbac.no_roles_defined")
	ErrLoadRoles              = errors.New("rbac.load_roles_failed")
)
