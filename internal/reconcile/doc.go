// Package reconcile repairs the persisted session set against the identity
// provider.
//
// Reconciliation runs at host startup and on demand. It validates every
// stored access token in one parallel batch, transparently refreshes expired
// sessions that have a usable refresh record, and drops the ones that
// cannot be recovered. Validation and refresh failures are isolated per
// session and never escape as errors; a failing session is simply excluded
// from the result.
package reconcile
