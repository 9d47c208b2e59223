// Package backend provides the Reelnet API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Token validation and authorization middleware
// - internal/social: Follow graph, follow requests and counters
// - internal/notify: Notification fan-out and inbox
// - internal/engagement: Likes, shares, bookmarks and comment likes
// - internal/presence: Heartbeats and the activity radar
// - internal/cache: Redis client and profile cache
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (logging, metrics, tracing)
// - internal/seed: Development and test data seeding

// See the individual package documentation for detailed API reference.
package backend
