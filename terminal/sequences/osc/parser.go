package osc

import (
	"encoding/base64"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// MaxBufSize bounds the accumulated OSC payload. Anything longer is
// almost certainly garbage (or an attack) and the whole sequence is
// dropped rather than truncated.
const MaxBufSize = 4096

// Parser accumulates the OSC string byte by byte and interprets it when
// the terminator arrives. OSC payloads are short and rare enough that
// parsing the buffered string in one go beats carrying an incremental
// state machine for every command family.
type Parser struct {
	buf      []uint8
	overflow bool
}

func NewParser() *Parser {
	return &Parser{buf: make([]uint8, 0, 128)}
}

// Reset prepares the parser for a new OSC string.
func (p *Parser) Reset() {
	p.buf = p.buf[:0]
	p.overflow = false
}

// Next accumulates one payload byte.
func (p *Parser) Next(c uint8) {
	if len(p.buf) >= MaxBufSize {
		p.overflow = true
		return
	}
	p.buf = append(p.buf, c)
}

// End interprets the accumulated payload. terminator is the byte that
// closed the string (BEL or the ESC of ST). Returns nil for unknown or
// malformed commands; the caller treats that as a silent drop.
func (p *Parser) End(terminator uint8) *Command {
	if p.overflow || len(p.buf) == 0 {
		return nil
	}

	term := TerminatorST
	if terminator == 0x07 {
		term = TerminatorBEL
	}

	num, rest, _ := strings.Cut(string(p.buf), ";")
	id, err := strconv.Atoi(num)
	if err != nil {
		return nil
	}

	switch id {
	case 0, 2:
		return &Command{
			Type:       CommandChangeWindowTitle,
			Title:      decodeText(rest),
			Terminator: term,
		}

	case 1:
		return &Command{
			Type:       CommandChangeWindowIcon,
			Title:      decodeText(rest),
			Terminator: term,
		}

	case 4:
		return parseColorPairs(rest, term)

	case 10, 11, 12:
		return parseDynamicColors(uint16(id), rest, term)

	case 104:
		cmd := &Command{Type: CommandResetColor, Terminator: term}
		for part := range strings.SplitSeq(rest, ";") {
			if part == "" {
				continue
			}
			idx, err := strconv.ParseUint(part, 10, 8)
			if err != nil {
				return nil
			}
			cmd.ResetIndices = append(cmd.ResetIndices, uint16(idx))
		}
		return cmd

	case 110, 111, 112:
		return &Command{
			Type:         CommandResetColor,
			ResetIndices: []uint16{ColorForeground + uint16(id-110)},
			Terminator:   term,
		}

	case 8:
		return parseHyperlink(rest, term)

	case 52:
		return parseClipboard(rest, term)
	}
	return nil
}

// parseColorPairs handles OSC 4: any number of index;spec pairs, where
// a spec of "?" queries instead of setting.
func parseColorPairs(rest string, term Terminator) *Command {
	parts := strings.Split(rest, ";")
	if len(parts) < 2 || len(parts)%2 != 0 {
		return nil
	}
	cmd := &Command{Type: CommandColorOps, Terminator: term}
	for i := 0; i < len(parts); i += 2 {
		idx, err := strconv.ParseUint(parts[i], 10, 8)
		if err != nil {
			return nil
		}
		op := ColorOp{Index: uint16(idx)}
		if parts[i+1] == "?" {
			op.Query = true
		} else {
			op.Spec = parts[i+1]
		}
		cmd.Colors = append(cmd.Colors, op)
	}
	return cmd
}

// parseDynamicColors handles OSC 10/11/12. Extra ;-separated specs
// apply to the following special slots, so "OSC 10;white;black" sets
// both foreground and background.
func parseDynamicColors(id uint16, rest string, term Terminator) *Command {
	cmd := &Command{Type: CommandColorOps, Terminator: term}
	slot := ColorForeground + (id - 10)
	for spec := range strings.SplitSeq(rest, ";") {
		if slot > ColorCursor {
			break
		}
		op := ColorOp{Index: slot}
		if spec == "?" {
			op.Query = true
		} else if spec == "" {
			slot++
			continue
		} else {
			op.Spec = spec
		}
		cmd.Colors = append(cmd.Colors, op)
		slot++
	}
	if len(cmd.Colors) == 0 {
		return nil
	}
	return cmd
}

func parseHyperlink(rest string, term Terminator) *Command {
	params, uri, ok := strings.Cut(rest, ";")
	if !ok {
		return nil
	}
	if uri == "" {
		return &Command{Type: CommandHyperlinkEnd, Terminator: term}
	}

	link := &Hyperlink{URI: uri}
	for param := range strings.SplitSeq(params, ":") {
		if value, found := strings.CutPrefix(param, "id="); found {
			link.ID = value
		}
	}
	return &Command{
		Type:       CommandHyperlinkStart,
		Hyperlink:  link,
		Terminator: term,
	}
}

func parseClipboard(rest string, term Terminator) *Command {
	selection, data, ok := strings.Cut(rest, ";")
	if !ok {
		return nil
	}
	clip := &Clipboard{Selection: 'c'}
	if selection != "" {
		clip.Selection = selection[0]
	}
	if data == "?" {
		clip.Query = true
	} else {
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil
		}
		clip.Data = string(decoded)
	}
	return &Command{
		Type:       CommandClipboard,
		Clipboard:  clip,
		Terminator: term,
	}
}

// decodeText interprets the payload as UTF-8, falling back to Latin-1
// the way xterm does for title strings that predate UTF-8 terminals.
func decodeText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}
