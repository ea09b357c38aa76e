// Package session manages authenticated sessions.
//
// A Session binds an opaque random token to an account id. Tokens travel in a
// signed cookie (CookieTransport), an Authorization bearer header
// (HeaderTransport) or both (CompositeTransport). Sessions are persisted in a
// Store: MemoryStore for tests and single-node development, RedisStore in
// production where the Redis key ttl follows the session expiry.
//
//	mgr := session.NewManager(
//	    session.WithStore(session.NewRedisStore(rdb, "filevault:")),
//	    session.WithTransport(session.NewCookieTransport(cookies, cfg.CookieName)),
//	    session.WithConfig(cfg),
//	)
//	r.Use(mgr.Middleware)
//
// Handlers read the session with FromContext.
package session
