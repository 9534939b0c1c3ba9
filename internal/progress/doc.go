// Package progress renders download progress ticks.
//
// A tick carries the cumulative number of received bytes and the expected
// total; a total of zero or less means the size is unknown.
package progress
