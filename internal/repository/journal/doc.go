// Package journal records alarm transitions in a SQLite database so that
// obstacle events can be reviewed after a run.
package journal
