// Package token provides the lexical layer of the wire format.
//
// [Escape] and [Unescape] substitute the grammar's structural characters
// inside text scalars. [Scanner] walks a document by offset, reading
// quoted runs and bracket or brace balanced spans, and reports errors with
// their [Pos].
package token
