// Package ir is a schema-less tree view of wire documents.
//
// Every key of a wire document names its value's type, so a document
// can be inspected, compared and re-emitted without the Go types that
// produced it. A Node is one value together with the key it was found
// under:
//
//   - ObjectType: a record, Values are its fields in order
//   - ArrayType: a collection, Values are its elements in order
//   - ScalarType: unescaped scalar text
//   - NullType: the null marker
//
// Fields carry Name, Tag (the type tag) and Extra (further tags such as
// a collection's declared signature). Elements carry Tag only (their
// runtime type name). The root object has neither.
package ir
