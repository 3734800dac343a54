package vicmd

// ExCommand is the parsed form of a ":"-prefixed command line (spec.md
// §4.4.5). Ex commands operate on a line range rather than a grapheme
// motion, so they are carried on ViCmd.Ex instead of Verb/Motion.
type ExCommand struct {
	HasRange bool
	RangeLo  int // 0-based line index, inclusive
	RangeHi  int

	Name string // "d", "y", "p", "s", "g", "g!", "normal"
	Arg  string // raw trailing text: "old/new/flags" for s, "{keys}" for normal, "pat/cmd" for g
}
