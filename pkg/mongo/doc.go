// Package mongo bootstraps the MongoDB client used by the document stores.
//
// New retries the initial connection, Healthcheck plugs into the HTTP health
// endpoint and EnsureIndexes lets every store declare its own indexes.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//	db, err := mongo.NewWithDatabase(ctx, cfg)
package mongo
