// Package keystream decodes a raw byte stream — including C0 control
// bytes, CSI/SS3 escape sequences, multi-byte UTF-8 graphemes, and the
// textual <esc>/<c-x>/<a-x>/<s-x> alias syntax — into KeyEvent values.
//
// Grounded on original_source/src/keys.rs (KeyEvent/KeyCode/ModKeys) and
// original_source/src/reader.rs (the decoding state machine); the pull-based
// Decoder follows the teacher's vimtextarea.keyToString's role of
// turning raw input into a single dispatchable token per call.
package keystream

import (
	"strings"

	"github.com/vicut/vicut/internal/linebuf"
)

// ModKeys is a bitset of modifier keys.
type ModKeys int

const (
	ModNone  ModKeys = 0
	ModShift ModKeys = 1 << iota
	ModAlt
	ModCtrl
)

func (m ModKeys) Has(f ModKeys) bool { return m&f != 0 }

// KeyCode names the decoded key.
type KeyCode int

const (
	KeyNull KeyCode = iota
	KeyChar
	KeyGrapheme
	KeyEnter
	KeyTab
	KeyBackTab
	KeyBackspace
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyDelete
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// KeyEvent is a decoded key: a KeyCode, its literal text (for Char/Grapheme),
// and a modifier set.
type KeyEvent struct {
	Code KeyCode
	Text string // populated for KeyChar/KeyGrapheme
	Mods ModKeys
}

func ctrlLetter(b byte) KeyEvent {
	return KeyEvent{Code: KeyChar, Text: string(rune('a' + b - 1)), Mods: ModCtrl}
}

// fromC0 maps C0 control bytes 0x00-0x1f, per original_source/src/keys.rs.
func fromC0(b byte) (KeyEvent, bool) {
	switch b {
	case 0x08, 0x7f:
		return KeyEvent{Code: KeyBackspace}, true
	case 0x09:
		return KeyEvent{Code: KeyTab}, true
	case 0x0d:
		return KeyEvent{Code: KeyEnter}, true
	case 0x1b:
		return KeyEvent{Code: KeyEsc}, true
	}
	if b <= 0x1f {
		return ctrlLetter(b), true
	}
	return KeyEvent{}, false
}

// Decoder pulls bytes from an in-memory buffer and decodes KeyEvents.
// Grounded on original_source/src/reader.rs's RawReader.
type Decoder struct {
	bytes    []byte
	pos      int
	escaped  bool // "\<" toggle: suppress alias recognition for next '<'
}

// NewDecoder creates a Decoder over src.
func NewDecoder(src []byte) *Decoder {
	return &Decoder{bytes: src}
}

// Feed appends more bytes to decode.
func (d *Decoder) Feed(src []byte) { d.bytes = append(d.bytes, src...) }

// Remaining reports how many undecoded bytes are left.
func (d *Decoder) Remaining() int { return len(d.bytes) - d.pos }

func (d *Decoder) peek(off int) (byte, bool) {
	i := d.pos + off
	if i < 0 || i >= len(d.bytes) {
		return 0, false
	}
	return d.bytes[i], true
}

// Next decodes and returns the next KeyEvent, or ok=false if the stream is
// exhausted.
func (d *Decoder) Next() (KeyEvent, bool) {
	for d.pos < len(d.bytes) {
		b := d.bytes[d.pos]

		if b == '\\' {
			if next, ok := d.peek(1); ok && next == '<' {
				d.pos++
				d.escaped = true
				continue
			}
		}

		if b == '<' && !d.escaped {
			if ev, n, ok := parseAlias(d.bytes[d.pos:]); ok {
				d.pos += n
				return ev, true
			}
		}
		d.escaped = false

		if b == 0x1b {
			if ev, n, ok := parseEscSeq(d.bytes[d.pos:]); ok {
				d.pos += n
				return ev, true
			}
			d.pos++
			return KeyEvent{Code: KeyEsc}, true
		}

		if b < 0x20 {
			if ev, ok := fromC0(b); ok {
				d.pos++
				return ev, true
			}
		}

		if b == '\\' {
			d.pos++
			continue
		}

		if ev, n, ok := decodeUTF8Grapheme(d.bytes[d.pos:]); ok {
			d.pos += n
			return ev, true
		}

		// Unrecognized byte sequence: discard one byte and continue, per
		// the "no event, bytes discarded" failure rule.
		d.pos++
	}
	return KeyEvent{}, false
}

// decodeUTF8Grapheme decodes the first grapheme cluster of buf, accumulating
// up to 4 bytes of UTF-8 as needed. A single-rune, single-byte cluster
// (plain ASCII) is reported as KeyChar; anything wider collapses to
// KeyGrapheme per spec.md §4.1.
func decodeUTF8Grapheme(buf []byte) (KeyEvent, int, bool) {
	s := string(buf)
	iter := linebuf.NewGraphemeIterator(s)
	if !iter.Next() {
		return KeyEvent{}, 0, false
	}
	cluster := iter.Cluster()
	if cluster == "" || len(cluster) > 4 {
		return KeyEvent{}, 0, false
	}
	if len(cluster) == 1 {
		return KeyEvent{Code: KeyChar, Text: cluster}, 1, true
	}
	return KeyEvent{Code: KeyGrapheme, Text: cluster}, len(cluster), true
}

// parseEscSeq parses CSI ("ESC [ ...") and SS3 ("ESC O ...") sequences.
// Returns the event, bytes consumed, and ok.
func parseEscSeq(buf []byte) (KeyEvent, int, bool) {
	if len(buf) < 2 || buf[0] != 0x1b {
		return KeyEvent{}, 0, false
	}
	switch buf[1] {
	case '[':
		return parseCSI(buf)
	case 'O':
		if len(buf) < 3 {
			return KeyEvent{}, 0, false
		}
		switch buf[2] {
		case 'P':
			return KeyEvent{Code: KeyF1}, 3, true
		case 'Q':
			return KeyEvent{Code: KeyF2}, 3, true
		case 'R':
			return KeyEvent{Code: KeyF3}, 3, true
		case 'S':
			return KeyEvent{Code: KeyF4}, 3, true
		}
	}
	return KeyEvent{}, 0, false
}

func parseCSI(buf []byte) (KeyEvent, int, bool) {
	if len(buf) < 3 {
		return KeyEvent{}, 0, false
	}
	switch buf[2] {
	case 'A':
		return KeyEvent{Code: KeyUp}, 3, true
	case 'B':
		return KeyEvent{Code: KeyDown}, 3, true
	case 'C':
		return KeyEvent{Code: KeyRight}, 3, true
	case 'D':
		return KeyEvent{Code: KeyLeft}, 3, true
	}
	// [<digits>~
	i := 2
	for i < len(buf) && buf[i] >= '0' && buf[i] <= '9' {
		i++
	}
	if i == 2 || i >= len(buf) || buf[i] != '~' {
		return KeyEvent{}, 0, false
	}
	num := string(buf[2:i])
	code, ok := csiNumToKey(num)
	if !ok {
		return KeyEvent{}, 0, false
	}
	return KeyEvent{Code: code}, i + 1, true
}

func csiNumToKey(num string) (KeyCode, bool) {
	switch num {
	case "1", "7":
		return KeyHome, true
	case "2":
		return KeyInsert, true
	case "3":
		return KeyDelete, true
	case "4", "8":
		return KeyEnd, true
	case "5":
		return KeyPgUp, true
	case "6":
		return KeyPgDown, true
	case "15":
		return KeyF5, true
	case "17":
		return KeyF6, true
	case "18":
		return KeyF7, true
	case "19":
		return KeyF8, true
	case "20":
		return KeyF9, true
	case "21":
		return KeyF10, true
	case "23":
		return KeyF11, true
	case "24":
		return KeyF12, true
	}
	return KeyNull, false
}

var namedAliases = map[string]KeyEvent{
	"esc":    {Code: KeyEsc},
	"cr":     {Code: KeyEnter},
	"enter":  {Code: KeyEnter},
	"tab":    {Code: KeyTab},
	"bs":     {Code: KeyBackspace},
	"del":    {Code: KeyDelete},
	"ins":    {Code: KeyInsert},
	"home":   {Code: KeyHome},
	"end":    {Code: KeyEnd},
	"left":   {Code: KeyLeft},
	"right":  {Code: KeyRight},
	"up":     {Code: KeyUp},
	"down":   {Code: KeyDown},
	"pgup":   {Code: KeyPgUp},
	"pgdown": {Code: KeyPgDown},
	"f1":     {Code: KeyF1}, "f2": {Code: KeyF2}, "f3": {Code: KeyF3}, "f4": {Code: KeyF4},
	"f5": {Code: KeyF5}, "f6": {Code: KeyF6}, "f7": {Code: KeyF7}, "f8": {Code: KeyF8},
	"f9": {Code: KeyF9}, "f10": {Code: KeyF10}, "f11": {Code: KeyF11}, "f12": {Code: KeyF12},
}

// parseAlias parses a textual alias starting at buf[0]=='<'. Handles
// composable c-/a-/s- modifier prefixes per original_source/src/reader.rs's
// parse_byte_alias.
func parseAlias(buf []byte) (KeyEvent, int, bool) {
	closeIdx := indexByte(buf, '>')
	if closeIdx < 0 {
		return KeyEvent{}, 0, false
	}
	inner := strings.ToLower(string(buf[1:closeIdx]))
	if inner == "" {
		return KeyEvent{}, 0, false
	}

	var mods ModKeys
	rest := inner
	for len(rest) >= 2 && rest[1] == '-' {
		switch rest[0] {
		case 'c':
			mods |= ModCtrl
		case 'a':
			mods |= ModAlt
		case 's':
			mods |= ModShift
		default:
			goto resolve
		}
		rest = rest[2:]
	}
resolve:
	if ev, ok := namedAliases[rest]; ok {
		ev.Mods |= mods
		return ev, closeIdx + 1, true
	}
	if len(rest) == 1 {
		ev := KeyEvent{Code: KeyChar, Text: rest, Mods: mods}
		return ev, closeIdx + 1, true
	}
	return KeyEvent{}, 0, false
}

func indexByte(buf []byte, c byte) int {
	for i, b := range buf {
		if b == c {
			return i
		}
	}
	return -1
}
