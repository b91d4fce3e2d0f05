// Package probe runs ffprobe once per file and parses its JSON output into
// a read-only [ProbeResult] snapshot.
//
// The snapshot keeps ffprobe's numeric strings as-is; interpreting them
// (and deciding whether an absent field is an error) is the job of the
// media package.
package probe
