package files

import (
	"time"

	"github.com/dmitrymomot/filevault/pkg/sanitizer"
	"github.com/dmitrymomot/filevault/svc/users"
)

// The functions below decide an action and apply it to f in memory.
// They never touch a store, so callers can re-run them after a version
// conflict on a fresh copy of the document.

// applyShare merges emails into the access list. The owner email is always
// part of the result; for documents without one the actor's email is used.
// It returns the emails that were not on the list before and whether the
// document changed.
func applyShare(f *File, access Access, actor *users.User, emails []string) ([]string, bool, error) {
	if !access.CanShare {
		return nil, false, ErrShareDenied
	}

	owner := f.OwnerEmail
	if owner == "" {
		owner = sanitizer.NormalizeEmail(actor.Email)
	}

	var added []string
	for _, e := range emails {
		if !f.HasUser(e) && e != owner {
			added = append(added, e)
		}
	}
	if len(added) == 0 && f.HasUser(owner) {
		return nil, false, nil
	}

	merged := make([]string, 0, len(f.Users)+len(added)+1)
	merged = append(merged, f.Users...)
	merged = append(merged, added...)
	merged = append(merged, owner)
	f.Users = sanitizer.Deduplicate(merged)
	return added, true, nil
}

// applyRemove drops email from the access list. It reports whether the
// list changed.
func applyRemove(f *File, access Access, email string) (bool, error) {
	if !access.CanRemoveCollaborators {
		return false, ErrRemoveDenied
	}
	if email == f.OwnerEmail {
		return false, ErrCannotRemoveOwner
	}
	if !f.HasUser(email) {
		return false, nil
	}
	f.Users = sanitizer.Without(f.Users, email)
	return true, nil
}

// applyToggle sets the reshare flag. It reports whether the flag changed.
func applyToggle(f *File, access Access, allow bool) (bool, error) {
	if !access.CanToggleReshare {
		return false, ErrToggleDenied
	}
	if f.AllowReshare != nil && *f.AllowReshare == allow {
		return false, nil
	}
	f.AllowReshare = boolPtr(allow)
	return true, nil
}

// applyRename sets the display name, keeping the stored extension, and
// backfills the owner email when the actor owns the file by id.
func applyRename(f *File, access Access, actor *users.User, name string) error {
	if !access.CanRename {
		return ErrFileNotFound
	}
	base, ext := sanitizer.SplitExtension(name)
	if f.Extension != "" && ext != f.Extension {
		base = name
	}
	if f.Extension != "" {
		f.Name = base + "." + f.Extension
	} else {
		f.Name = name
	}
	if f.OwnerEmail == "" && access.IsOwner {
		f.OwnerEmail = sanitizer.NormalizeEmail(actor.Email)
	}
	return nil
}

// applyMark flags the file for purging.
func applyMark(f *File, access Access, at time.Time) error {
	if !access.CanDelete {
		return ErrDeleteDenied
	}
	f.DeletedAt = &at
	return nil
}
