// Package downloader runs one resolve-then-download pass and prints the
// user transcript.
//
// The pass is linear: the version is resolved first and the archive is only
// requested once a version is known. Any failure ends the run with an error.
package downloader
