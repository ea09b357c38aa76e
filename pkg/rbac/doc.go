// Package rbac implements a small role based authorizer.
//
// Roles are loaded once from a RoleSource (in memory or YAML), inheritance is
// resolved eagerly and permission checks use the wildcard rules of package
// scopes. The authorizer is safe for concurrent use since it is immutable
// after construction.
package rbac
