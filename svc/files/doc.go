// Package files implements file ownership and sharing.
//
// Every file has exactly one owner, identified by the owner email stored on
// the document. The owner may rename, delete, share and unshare the file and
// decide whether collaborators may share it further. Collaborators are the
// emails on the access list; they can read and rename the file, and add more
// collaborators while resharing is allowed.
//
// Permissions come from a small role table (roles.yaml) evaluated with
// pkg/rbac. Mutations are compare-and-set on the document version and are
// retried on conflict.
//
// Deleting a file only marks it. A queue task removes the blob and the
// document, and a periodic sweep re-schedules purges that were lost:
//
//	svc, _ := files.NewService(ctx, files.NewMongoStore(db), userStore, blobs,
//		files.WithEnqueuer(enqueuer),
//		files.WithPublisher(publisher),
//	)
//	_ = worker.RegisterHandlers(svc.TaskHandlers()...)
//	_ = svc.ScheduleSweep(scheduler, 0)
package files
