package token

import (
	"fmt"
	"sort"
	"strconv"
)

// PosDoc is a document addressed by byte offsets. Newline offsets are
// computed on demand for line/column reporting.
type PosDoc struct {
	d string
	n []int
	// nl is true once n has been computed.
	nl bool
}

func NewPosDoc(d string) *PosDoc {
	return &PosDoc{d: d}
}

func (p *PosDoc) lines() {
	if p.nl {
		return
	}
	p.nl = true
	for i := 0; i < len(p.d); i++ {
		if p.d[i] == '\n' {
			p.n = append(p.n, i)
		}
	}
}

func (p *PosDoc) LineCol(off int) (int, int) {
	p.lines()
	N := len(p.n)
	di := sort.Search(N, func(i int) bool {
		return p.n[i] >= off
	})
	switch di {
	case 0:
		return 0, off
	default:
		return di, off - p.n[di-1] - 1
	}
}

func (p *PosDoc) Pos(i int) *Pos {
	return &Pos{
		I: i,
		D: p,
	}
}

type Pos struct {
	I int
	D *PosDoc
}

func (p *Pos) LineCol() (int, int) {
	return p.D.LineCol(p.I)
}

func (p *Pos) Line() int {
	l, _ := p.LineCol()
	return l
}

func (p *Pos) Col() int {
	_, c := p.LineCol()
	return c
}

func (p Pos) String() string {
	if p.D == nil {
		return fmt.Sprintf("at offset %d", p.I)
	}
	sample := p.D.d[max(0, p.I-10):min(p.I+10, len(p.D.d))]
	sample = strconv.Quote(sample)
	sample = sample[1 : len(sample)-1]
	return fmt.Sprintf("`...%s...` at offset %d (line=%d, col=%d)", sample, p.I, p.Line(), p.Col())
}
