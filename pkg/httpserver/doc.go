// Package httpserver runs the API with graceful shutdown on context
// cancellation and provides a JSON health endpoint that aggregates
// dependency checks (mongo, redis, nats).
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	g.Go(func() error { return srv.Run(ctx, router) })
package httpserver
