package rbac

import (
	"context"
	"errors"
	"io"
	"maps"

	"gopkg.in/yaml.v3"
)

// RoleSource provides role definitions to the authorizer.
type RoleSource interface {
	Load(ctx context.Context) (map[string]Role, error)
}

type inMemSource struct {
	roles map[string]Role
}

// NewInMemRoleSource returns a RoleSource backed by a map.
func NewInMemRoleSource(roles map[string]Role) RoleSource {
	return &inMemSource{roles: roles}
}

func (s *inMemSource) Load(context.Context) (map[string]Role, error) {
	return maps.Clone(s.roles), nil
}

// yamlDocument is the on-disk shape:
//
//	roles:
//	  owner:
//	    permissions: ["file.*"]
//	    inherits: []
type yamlDocument struct {
	Roles map[string]Role `yaml:"roles"`
}

type yamlSource struct {
	data []byte
}

// NewYAMLRoleSource returns a RoleSource that decodes role definitions from raw YAML.
func NewYAMLRoleSource(data []byte) RoleSource {
	return &yamlSource{data: data}
}

// NewYAMLRoleSourceFromReader reads r fully and returns a YAML RoleSource.
func NewYAMLRoleSourceFromReader(r io.Reader) (RoleSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrLoadRoles, err)
	}
	return NewYAMLRoleSource(data), nil
}

func (s *yamlSource) Load(context.Context) (map[string]Role, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(s.data, &doc); err != nil {
		return nil, errors.Join(ErrLoadRoles, err)
	}
	return doc.Roles, nil
}
