// Package simple implements the file translation backend: one tree per
// locale file, read once and kept in memory. It has no fallback tier and
// no request memoization.
package simple
