// Package diagfmt renders diagnostics and token streams for the CLI.
//
// Diagnostics: Pretty (source line with a caret under the span) and JSON.
// Tokens: pretty, json, msgpack and a spew dump of the raw structures.
package diagfmt
