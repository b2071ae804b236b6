// Package auth composes the session subsystem behind a single provider
// facade.
//
// The Provider exposes create/remove/list operations and a change-event
// stream to the rest of the application. At startup (and on demand) it runs
// the reconciler over the persisted sessions, persists the corrected state,
// and notifies subscribers with a diffed change event. Events fire only
// after the corresponding store writes have completed, so no listener ever
// observes a notification for state that is not yet durable.
//
// Host capabilities (progress indication, user-facing messages, usage
// signals) are injected as interfaces; every one of them defaults to a
// no-op so the provider works headless.
package auth
