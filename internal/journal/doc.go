// Package journal records run history in a SQLite database.
//
// Each build inserts a row into runs when it starts, one row into parts per
// assembled part file, and finalizes the run row with its outcome. The CLI
// history command reads it back. Schema changes ship as numbered files under
// migrations/ and are applied in order on Open.
package journal
