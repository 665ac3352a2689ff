// Package records decodes and validates the two input document families.
//
// Both families are JSON lines: a song-metadata document holds exactly one
// object, an event-log document holds zero or more. Each object is validated
// against an embedded JSON schema before it is decoded, so a missing or
// mistyped field fails with a ParseError naming the file, the record and the
// field instead of surfacing later as a zero value.
//
// Event records only need page and ts. The fields a songplay is built from are
// required when page is "NextSong"; other pages commonly carry an empty userId
// and null names and are dropped by the transformer anyway.
package records
