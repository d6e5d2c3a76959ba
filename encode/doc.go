// Package encode writes ir.Node trees as wire text.
//
// # Usage
//
//	node, err := parse.Parse(text)
//	// compact wire text, identical to text for encoder output
//	err = encode.Encode(node, w)
//
//	// indented and colored, for people
//	err = encode.Encode(node, w, encode.Indent(2), encode.EncodeColors(encode.NewColors()))
//
// # Related Packages
//
//   - github.com/signadot/tagwire/ir - the tree
//   - github.com/signadot/tagwire/parse - wire text to tree
package encode
