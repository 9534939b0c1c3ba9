// Package platform enumerates the build targets that publish Chromium snapshots
// and maps each of them to its remote path segment and archive filename.
package platform
