// Package dbset loads pipe-delimited dataset files into read-only lookup tables.
//
// A dataset file is UTF-8 text. The first line names the columns, every
// following line is a row keyed by its first column:
//
//	id|name|city
//	42|Ada|London
//	7 | Grace | Arlington
//
// Fields are trimmed. Missing trailing fields read as empty strings and extra
// fields are ignored. When two rows share a key the later row wins. There is no
// escaping of the delimiter; a value containing "|" splits into two fields.
//
// Tables are built once at startup and never mutated, so a *Store can be
// shared by any number of goroutines without locking.
package dbset
