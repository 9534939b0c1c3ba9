// Package resolver looks up the latest snapshot build identifier published
// for a platform.
package resolver
