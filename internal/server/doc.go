// Package server provides HTTP routing, middleware, and the OAuth callback endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [CallbackHandler] receives the OAuth2 authorization redirect for a single attempt.
//
// The handler forwards the code and state parameters to an [ExchangeFunc] supplied by the
// credential lifecycle manager, responds 200 on success or 400 with the failure reason,
// and sends the outcome through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user starts an authorization flow, a temporary HTTP server binds the redirect
// port, handles the single callback, and shuts down. The auth package owns that lifecycle;
// this package supplies the routing and the handler.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
