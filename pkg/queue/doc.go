// Package queue is a small persistent task queue.
//
// An Enqueuer stores JSON payloads as tasks named after the payload type.
// A Worker claims due tasks, dispatches them to handlers registered with
// NewTaskHandler, and retries failures with quadratic backoff until the
// task's retry budget is spent, after which it lands in the dead letter
// collection. A Scheduler creates payload-less periodic tasks handled by
// NewPeriodicTaskHandler.
//
// Storage is pluggable. MemoryStorage serves tests and single-process
// development; MongoStorage claims with FindOneAndUpdate so any number of
// workers can share a database.
//
//	storage := queue.NewMongoStorage(db)
//	enq, _ := queue.NewEnqueuer(storage)
//	w, _ := queue.NewWorker(storage, queue.WithQueues("files"))
//	_ = w.RegisterHandlers(queue.NewTaskHandler(func(ctx context.Context, p PurgeFile) error {
//		return purge(ctx, p.FileID)
//	}))
//	eg.Go(w.Run(ctx))
package queue
