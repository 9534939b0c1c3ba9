// Package fetcher downloads a snapshot archive straight to disk.
//
// The output file is opened before any network request is made, so a local
// write failure never costs a download. The file is closed on every path; an
// interrupted transfer leaves the partial file in place.
package fetcher
