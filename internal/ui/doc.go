// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The login wait screen covers the browser handoff during auth login:
//  1. [LoginWaiting] : Spinner while the local callback server waits for authorization
//  2. [LoginSucceeded] : Confirmation with profile and granted scopes
//  3. [LoginFailed] : The error that ended the flow
//
// The [LoginModel] implements bubbletea/Elm's standard Init/Update/View pattern.
// The auth flow delivers its outcome through a [LoginResult] channel; the model
// quits on the first result and leaves the final view on screen.
package ui
