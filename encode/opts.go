package encode

type EncodeOption func(*EncState)

// Indent selects the indented view with n spaces per level. Zero keeps
// the compact wire form.
func Indent(n int) EncodeOption {
	return func(es *EncState) { es.indent = n }
}

func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) {
		if c == nil {
			es.Color = nil
			return
		}
		es.Color = c.Color
	}
}

// HideExtra drops extra key tags such as declared collection
// signatures.
func HideExtra(v bool) EncodeOption {
	return func(es *EncState) { es.hideExtra = v }
}
