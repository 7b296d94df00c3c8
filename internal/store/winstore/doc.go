// Package winstore writes to the live Windows registry.
//
// On other platforms Open always fails with a StoreUnavailable error so
// callers can select a different backend.
package winstore
