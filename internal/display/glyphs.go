package display

// Glyph rows use '.' for an unlit pixel and a palette letter otherwise.
var palette = map[byte]RGB{
	'.': Off,
	'G': Green,
	'B': Blue,
	'R': Red,
	'W': White,
}

var (
	Start = mustGlyph("start",
		"..GGG...",
		".G...G..",
		"G.....G.",
		"G.....G.",
		"G.....G.",
		"G.....G.",
		".G...G..",
		"..GGG...",
	)
	QuizStart = mustGlyph("quiz-start",
		"..BBB...",
		".B...B..",
		"B..B..B.",
		"B.B.B.B.",
		"B..B..B.",
		"B.....B.",
		".B...B..",
		"..BBB...",
	)
	End = mustGlyph("end",
		"..RRR...",
		".R...R..",
		"R.....R.",
		"R.....R.",
		"R.....R.",
		"R.....R.",
		".R...R..",
		"..RRR...",
	)
	Correct = mustGlyph("correct",
		"........",
		"...GG...",
		"..GGG...",
		".GGG....",
		"..GG....",
		"...G....",
		"........",
		"........",
	)
	Incorrect = mustGlyph("incorrect",
		"........",
		".R...R..",
		"..R.R...",
		"...R....",
		"..R.R...",
		".R...R..",
		"........",
		"........",
	)
)

func mustGlyph(name string, rows ...string) Glyph {
	if len(rows) != Size {
		panic("display: glyph " + name + " needs 8 rows")
	}
	g := Glyph{Name: name}
	for y, row := range rows {
		if len(row) != Size {
			panic("display: glyph " + name + " needs 8 columns per row")
		}
		for x := 0; x < Size; x++ {
			c, ok := palette[row[x]]
			if !ok {
				panic("display: glyph " + name + " uses an unknown colour")
			}
			g.Pixels[y*Size+x] = c
		}
	}
	return g
}
