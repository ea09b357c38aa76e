package files

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/filevault/svc/users"
)

// RevocationKind selects what a Revocation takes away.
type RevocationKind uint8

const (
	RevokeKindCollaborator RevocationKind = iota + 1
	RevokeKindFile
)

func (k RevocationKind) String() string {
	switch k {
	case RevokeKindCollaborator:
		return "collaborator"
	case RevokeKindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Revocation removes one collaborator from a file, or the file itself.
type Revocation struct {
	Kind   RevocationKind
	FileID string
	Email  string
}

// RevokeCollaborator builds a request removing email from the file.
func RevokeCollaborator(fileID, email string) Revocation {
	return Revocation{Kind: RevokeKindCollaborator, FileID: fileID, Email: email}
}

// RevokeFile builds a request deleting the file.
func RevokeFile(fileID string) Revocation {
	return Revocation{Kind: RevokeKindFile, FileID: fileID}
}

// Revoke dispatches r to RemoveCollaborator or DeleteFile. The returned file
// is nil for file revocations.
func (s *Service) Revoke(ctx context.Context, actor *users.User, r Revocation) (*File, error) {
	switch r.Kind {
	case RevokeKindCollaborator:
		return s.RemoveCollaborator(ctx, actor, r.FileID, r.Email)
	case RevokeKindFile:
		return nil, s.DeleteFile(ctx, actor, r.FileID)
	default:
		return nil, fmt.Errorf("%w: kind %s", ErrInvalidRevocation, r.Kind)
	}
}
