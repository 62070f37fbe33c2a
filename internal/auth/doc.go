// Package auth owns the OAuth2 credential lifecycle for the Spotify API.
//
// # Credential Lifecycle Manager
//
// [Manager] is the single owner of persistent credential state. It is constructed once
// per process and passed by reference to every consumer; nothing else reads or writes
// the stored records.
//
// [Manager.GetValidAccessToken] is the one read/refresh path: it returns a token that is
// safe to present to the remote API, refreshing first when the token is inside the [Skew]
// window. Concurrent callers share a single in-flight refresh through a singleflight
// group, so the remote never sees two simultaneous refreshes of the same token.
//
// [Manager.GenerateAuthURL] starts an authorization attempt: it persists a fresh
// state/verifier handshake (overwriting any prior attempt) and returns the authorization
// URL. [Manager.ExchangeCodeForToken] consumes the callback, validating state before
// exchanging the code.
//
// Manager implements [golang.org/x/oauth2.TokenSource], so API clients built with
// [golang.org/x/oauth2.NewClient] route every request through the lifecycle.
//
// # PKCE
//
// [State], [Verifier], and [Challenge] are pure functions over a cryptographically
// secure random source. Challenge derives the S256 code challenge:
// base64url(SHA-256(verifier)), unpadded.
//
// # Token Exchange
//
// [Exchanger] performs the two token endpoint round trips. Exchange sends the client id
// and PKCE verifier in the form body (no Basic auth); Refresh authenticates with HTTP
// Basic application credentials. Neither retries: authorization codes are single-use
// upstream.
//
// # Storage
//
// [Store] persists the [Credentials] and [Handshake] records. [FileStore] implements it
// with two JSON files under an owner-only directory (0700 directory, 0600 files).
// A missing record is (nil, nil), never an error; clearing an absent record succeeds.
//
// # Callback Listener
//
// [CallbackListener] is the short-lived local endpoint that receives the authorization
// redirect. Lifecycle: Idle -> Listening -> Closed. It closes after the first callback,
// after an error redirect, or after [CallbackTimeout]. Starting a new attempt through
// [Manager.StartCallbackListener] closes any prior listener first, so the port is
// released and a stale attempt can never complete.
package auth
