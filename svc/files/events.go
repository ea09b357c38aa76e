package files

import (
	"context"

	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/svc/users"
)

// Event subjects published after successful mutations.
const (
	SubjectUploaded            = "files.uploaded"
	SubjectShared              = "files.shared"
	SubjectCollaboratorRemoved = "files.collaborator_removed"
	SubjectReshareToggled      = "files.reshare_toggled"
	SubjectRenamed             = "files.renamed"
	SubjectDeleted             = "files.deleted"
)

// Event is the payload of every file lifecycle event.
type Event struct {
	FileID     string   `json:"file_id"`
	ActorEmail string   `json:"actor_email"`
	Emails     []string `json:"emails,omitempty"`
}

func (s *Service) publish(ctx context.Context, subject string, f *File, actor *users.User, emails ...string) {
	ev := Event{FileID: f.ID, Emails: emails}
	if actor != nil {
		ev.ActorEmail = actor.Email
	}
	if err := s.events.Publish(ctx, subject, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to publish file event",
			logger.Event(subject),
			logger.FileID(f.ID),
			logger.Error(err))
	}
}
