// Package page implements the fixed-size page of fixed-size row slots that
// the database persists to disk.
package page

// PageSize is the size in bytes of every page on disk
const PageSize = 4 * 1024

// HeaderSize is the size in bytes of the length prefix at the start of each slot
const HeaderSize = 8
