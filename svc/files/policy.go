package files

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/dmitrymomot/filevault/pkg/rbac"
	"github.com/dmitrymomot/filevault/pkg/sanitizer"
	"github.com/dmitrymomot/filevault/svc/users"
)

// Role of a user on one file.
type Role string

const (
	RoleNone         Role = ""
	RoleCollaborator Role = "collaborator"
	RoleResharer     Role = "resharer"
	RoleOwner        Role = "owner"
)

// Permissions checked against the role table.
const (
	PermRead          = "file.read"
	PermRename        = "file.rename"
	PermShare         = "file.share"
	PermRemoveUsers   = "file.unshare"
	PermToggleReshare = "file.reshare"
	PermDelete        = "file.delete"
)

//go:embed roles.yaml
var rolesYAML []byte

// Access is the effective permission state of one user on one file.
type Access struct {
	Role                   Role `json:"role"`
	IsOwner                bool `json:"isOwner"`
	CanRead                bool `json:"-"`
	CanShare               bool `json:"canShare"`
	CanRename              bool `json:"canRename"`
	CanDelete              bool `json:"canDelete"`
	CanToggleReshare       bool `json:"canToggleReshare"`
	CanRemoveCollaborators bool `json:"canRemoveCollaborators"`
}

// Policy maps a (file, user) pair to an Access.
type Policy struct {
	authz rbac.Authorizer
}

// NewPolicy builds a policy from the embedded role table.
func NewPolicy(ctx context.Context) (*Policy, error) {
	return NewPolicyFromSource(ctx, rbac.NewYAMLRoleSource(rolesYAML))
}

// NewPolicyFromSource builds a policy from a custom role source.
func NewPolicyFromSource(ctx context.Context, source rbac.RoleSource) (*Policy, error) {
	authz, err := rbac.NewAuthorizer(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load file roles: %w", err)
	}
	return &Policy{authz: authz}, nil
}

// RoleOf derives the role of actor on f. The owner is matched by email or,
// for documents without one, by the owner id.
func RoleOf(f *File, actor *users.User) Role {
	if f == nil || actor == nil {
		return RoleNone
	}
	email := sanitizer.NormalizeEmail(actor.Email)
	switch {
	case f.OwnerEmail != "" && f.OwnerEmail == email:
		return RoleOwner
	case f.Owner.Is(actor.ID):
		return RoleOwner
	case f.HasUser(email):
		if f.ReshareAllowed() {
			return RoleResharer
		}
		return RoleCollaborator
	default:
		return RoleNone
	}
}

// Access evaluates every action for actor on f.
func (p *Policy) Access(f *File, actor *users.User) Access {
	role := RoleOf(f, actor)
	a := Access{
		Role:                   role,
		IsOwner:                role == RoleOwner,
		CanRead:                p.can(role, PermRead),
		CanShare:               p.can(role, PermShare),
		CanRename:              p.can(role, PermRename),
		CanDelete:              p.can(role, PermDelete),
		CanRemoveCollaborators: p.can(role, PermRemoveUsers),
	}
	// Toggling is tied to the stored owner email, an owner matched only by
	// id cannot change it until the email is backfilled.
	a.CanToggleReshare = p.can(role, PermToggleReshare) &&
		f.OwnerEmail != "" && f.OwnerEmail == sanitizer.NormalizeEmail(actor.Email)
	return a
}

func (p *Policy) can(role Role, perm string) bool {
	if role == RoleNone {
		return false
	}
	return p.authz.Can(string(role), perm) == nil
}
