package token

// Scanner walks a window [i, end) of a wire document by byte offset.
// Sub-scanners returned by Span share the document, so positions in
// errors are always absolute.
type Scanner struct {
	doc *PosDoc
	i   int
	end int
}

func NewScanner(d string) *Scanner {
	return &Scanner{doc: NewPosDoc(d), end: len(d)}
}

func (sc *Scanner) Offset() int { return sc.i }

func (sc *Scanner) Done() bool { return sc.i >= sc.end }

func (sc *Scanner) Pos() *Pos { return sc.doc.Pos(sc.i) }

// Text returns the unconsumed remainder of the window.
func (sc *Scanner) Text() string { return sc.doc.d[sc.i:sc.end] }

// Window returns the whole window, consumed or not.
func (sc *Scanner) Window(start int) string { return sc.doc.d[start:sc.end] }

func (sc *Scanner) Peek() (byte, bool) {
	if sc.i >= sc.end {
		return 0, false
	}
	return sc.doc.d[sc.i], true
}

// Accept consumes c if it is next.
func (sc *Scanner) Accept(c byte) bool {
	if b, ok := sc.Peek(); ok && b == c {
		sc.i++
		return true
	}
	return false
}

func (sc *Scanner) Expect(c byte) error {
	b, ok := sc.Peek()
	if !ok {
		return NewScanErr(ErrExpected, sc.doc.Pos(sc.i), "%q, got end of input", c)
	}
	if b != c {
		return NewScanErr(ErrExpected, sc.doc.Pos(sc.i), "%q, got %q", c, b)
	}
	sc.i++
	return nil
}

// Quoted consumes a double quoted run and returns its content. The
// content is returned as is; text scalars are unescaped by the caller.
func (sc *Scanner) Quoted() (string, error) {
	start := sc.i
	if err := sc.Expect('"'); err != nil {
		return "", err
	}
	for j := sc.i; j < sc.end; j++ {
		if sc.doc.d[j] == '"' {
			res := sc.doc.d[sc.i:j]
			sc.i = j + 1
			return res, nil
		}
	}
	return "", NewScanErr(ErrUnterminated, sc.doc.Pos(start), "quoted text")
}

// Span consumes a bracketed run starting at open and ending at its
// matching close and returns a scanner over that run, delimiters
// included.
func (sc *Scanner) Span(open, close byte) (*Scanner, error) {
	start := sc.i
	if err := sc.Expect(open); err != nil {
		return nil, err
	}
	j, err := Balanced(sc.doc.d[:sc.end], sc.i, open, close)
	if err != nil {
		return nil, &ErrImbalancedStructure{Open: open, Close: close, Pos: sc.doc.Pos(start)}
	}
	sc.i = j
	return &Scanner{doc: sc.doc, i: start, end: j}, nil
}

// Err builds a positioned error at the scanner's current offset.
func (sc *Scanner) Err(err error, format string, args ...any) error {
	return NewScanErr(err, sc.doc.Pos(sc.i), format, args...)
}

// Balanced returns the offset just past the close matching an open that
// has already been consumed before offset i. Quoted runs are skipped:
// type names such as "[]int" carry brackets and text scalars carry
// escaped structure only.
func Balanced(d string, i int, open, close byte) (int, error) {
	opened := 1
	for i < len(d) {
		switch d[i] {
		case '"':
			i++
			for i < len(d) && d[i] != '"' {
				i++
			}
			if i == len(d) {
				return 0, ErrUnterminated
			}
		case open:
			opened++
		case close:
			opened--
			if opened == 0 {
				return i + 1, nil
			}
		}
		i++
	}
	return 0, ErrDocBalance
}
