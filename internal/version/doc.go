// Package version exposes build metadata for chromium-downloader.
//
// Version, Commit and BuildTime are injected through -ldflags; the defaults
// describe a local development build.
package version
