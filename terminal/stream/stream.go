package stream

import (
	"slices"

	"github.com/gridterm/gridterm/logger"
	"github.com/gridterm/gridterm/terminal/ansi"
	"github.com/gridterm/gridterm/terminal/core"
	"github.com/gridterm/gridterm/terminal/handler"
	"github.com/gridterm/gridterm/terminal/parser"
	"github.com/gridterm/gridterm/terminal/sequences/csi"
	"github.com/gridterm/gridterm/terminal/sequences/dcs"
	"github.com/gridterm/gridterm/terminal/sequences/esc"
	"github.com/gridterm/gridterm/terminal/sequences/osc"
	"github.com/gridterm/gridterm/terminal/sgr"
	"github.com/gridterm/gridterm/terminal/utils"
)

// This is the maximum number of codepoints we can decode
// at one time for this function call. This is somewhat arbitrary
// so if someone can demonstrate a better number then we can switch.
const MaxCodePoints = 4096

// Flip this to true when you want verbose debug output for
// debugging terminal stream issues. In addition to louder
// output this will also disable the chunk optimizations in
// order to make it easier to see every byte.
const debug = false

// This type can be used to process a stream of tty control characters.
// This will call various callsback functions on type T. Type T only has to
// implement the callbacks it cares about; any unimplemented callbacks will
// logged at runtime
//
// To figure out what callback are available, we try to cast the type T
// into specific golang interface
type Stream struct {
	handler     any
	parser      *parser.Parser
	utf8Decoder *UTF8Decoder

	logger logger.Logger
}

func NewStream(handler any, logger logger.Logger) *Stream {
	return &Stream{
		handler:     handler,
		parser:      parser.NewParser(),
		utf8Decoder: NewUTF8Decoder(),
		logger:      logger,
	}
}

// Nextslice prcess a string of characters
func (s *Stream) NextSlice(input []uint8) {
	if debug {
		for c := range slices.Values(input) {
			s.Next(c)
		}
		return
	}
	cpBuf := make([]uint32, MaxCodePoints)
	// split the input into chunks that fit into cp_buf. The chunk has to
	// be strictly smaller than the buffer since a rejected byte can emit
	// two codepoints.
	i := 0
	for {
		bufLen := min(len(cpBuf)-1, len(input)-i)
		s.nextSliceCapped(input[i:i+bufLen], cpBuf)
		i += bufLen
		if i >= len(input) {
			break
		}
	}
}

func (s *Stream) nextSliceCapped(input []uint8, cpBuf []uint32) {
	utils.Assert(len(input) < len(cpBuf))
	offset := 0

	for s.utf8Decoder.state != 0 {
		if offset >= len(input) {
			break
		}
		s.nextUtf8(input[offset])
		offset += 1
	}
	if offset >= len(input) {
		return
	}

	// If we're not in the ground state then we process until we are. This
	// can happen if the last chunk of input put us in the middle of a control
	// sequence.
	offset += s.consumeUntilGround(input[offset:])
	if offset >= len(input) {
		return
	}
	offset += s.consumeAllEscapes(input[offset:])

	// If we're in the ground state then we can process the input
	// until we see an ESC (0x1B) since all other chracters up to that point
	// are just UTF-8 characters
	for (s.parser.State == parser.StateGround) && (offset < len(input)) {
		decoded, consumed := s.utf8Decoder.DecodeUntilControlSeq(input[offset:], cpBuf)
		for cp := range slices.Values(cpBuf[:decoded]) {
			// At this point we can assume that the input
			// is already in valid range of ground state.
			// Any C0 control executes, everything else prints.
			if cp < 0x20 {
				s.execute(uint8(cp))
			} else {
				s.print(cp)
			}
		}
		// Consume the bytes we just processed.
		offset += consumed
		if offset >= len(input) {
			return
		}

		// If our offset is NOT an escape then we must have a
		// partial UTF-8 sequence. In that case, we pass it off
		// to the scalar parser.
		if input[offset] != ansi.C0.ESC {
			rem := input[offset:]
			for c := range slices.Values(rem) {
				s.nextUtf8(c)
			}
			return
		}

		// Process control sequence until we run out.
		offset += s.consumeAllEscapes(input[offset:])
	}
}

// Like nextSlice but takes one byte and is necessarily a scalar
// operation that can't use SIMD. Prefer nextSlice if you can and
// try to get multiple bytes at once.
func (s *Stream) Next(c uint8) {
	// The scalar path can be responsible for decoding UTF-8.
	switch s.parser.State {
	case parser.StateGround:
		s.nextUtf8(c)
	default:
		s.nextNonUtf8(c)
	}
}

// nextUtf8 processes a single UTF-8 character and print as necessary.
//
// This assumes we're in the UTF-8 decoding state. If we may not
// be in the UTF-8 decoding state call nextSlice or next.
func (s *Stream) nextUtf8(c uint8) {
	utils.Assert(s.parser.State == parser.StateGround)
	s.logger.Debug("nextUtf8", "code", ansi.String(c))

	cp, generated, consumed := s.utf8Decoder.Next(c)
	if generated {
		s.handleCodepoint(cp)
	}

	if !consumed {
		cp, generated, consumed := s.utf8Decoder.Next(c)

		// It should be impossible for the utf8Decoder
		// to not consume the byte twice in a row.
		utils.Assert(consumed)
		if generated {
			s.handleCodepoint(cp)
		}
	}
}

// To be called whenever the utf-8 decoder produces a codepoint.
//
// This function is abstracted this way to handle the case where
// the decoder emits a 0x1B after rejecting an ill-formed sequence.
//
// The first 128 characters of UTF-8, which correspond one-to-one with ASCII (ansi-7bit),
// are encoded using a single byte with the same binary value as ASCII,
// so a codepoint in the C0 range executes like a raw byte would.
func (s *Stream) handleCodepoint(cp uint32) {
	if cp == uint32(ansi.C0.ESC) {
		s.nextNonUtf8(uint8(cp))
		return
	}
	if cp < 0x20 {
		s.execute(uint8(cp))
		return
	}

	s.print(cp)
}

// Process the next character and call any callbacks if necessary.
//
// This assumes that we're not in the UTF-8 decoding state. If
// we may be in the UTF-8 decoding state call nextSlice or next.
func (s *Stream) nextNonUtf8(c uint8) {
	utils.Assert(s.parser.State != parser.StateGround || c == ansi.C0.ESC)
	s.logger.Debug("nextNonUtf8", "code", ansi.String(c))

	actions := s.parser.Next(c)
	for action := range slices.Values(actions[:]) {
		if action == nil {
			continue
		}
		s.logger.Debug("action", action.String())
		switch action.Type {
		case parser.ActionPrint:
			s.print(uint32(action.PrintData))

		case parser.ActionExecute:
			s.execute(action.ExecuteData)

		case parser.ActionCSIDispatch:
			s.csiDispatch(action.CSIDispatchData)

		case parser.ActionESCDispatch:
			s.escDispatch(action.ESCDispatchData)

		case parser.ActionOSCEnd:
			switch {
			case action.OSCDispatchData != nil:
				s.oscDispatch(action.OSCDispatchData)
			default:
				s.logger.Warn("unrecognized OSC sequence, ignoring")
				continue
			}

		case parser.ActionDCSHook:
			if action.DCSHookData == nil {
				s.logger.Warn("hook with no DCS data, ignoring")
				continue
			}
			if handler, implemented := s.handler.(dcs.HookHandler); implemented {
				handler.DCSHook(action.DCSHookData)
			}

		case parser.ActionDCSPut:
			if handler, implemented := s.handler.(dcs.PutHandler); implemented {
				handler.DCSPut(action.DCSPutData)
			}

		case parser.ActionDCSUnHook:
			if handler, implemented := s.handler.(dcs.UnhookHandler); implemented {
				handler.DCSUnhook()
			}
		}
	}
}

func (s *Stream) execute(c uint8) {
	if s.handler == nil {
		s.logger.Warn("handler is nil, ignoring")
		return
	}
	c0 := ansi.C0
	switch c {
	case c0.BS:
		if handler, implemented := s.handler.(handler.EditorHandler); implemented {
			handler.Backspace()
			return
		}

	case c0.HT:
		if handler, implemented := s.handler.(handler.EditorHandler); implemented {
			handler.SetCursorTabRight(1)
			return
		}

	case c0.LF, c0.VT, c0.FF:
		if handler, implemented := s.handler.(handler.EditorHandler); implemented {
			handler.LineFeed()
			return
		}

	case c0.CR:
		if handler, implemented := s.handler.(handler.EditorHandler); implemented {
			handler.CarriageReturn()
			return
		}

	case c0.BEL:
		if handler, implemented := s.handler.(handler.EditorHandler); implemented {
			handler.Bell()
			return
		}

	case c0.SO:
		// Shift Out, invoke the G1 charset.
		if handler, implemented := s.handler.(handler.CharsetHandler); implemented {
			handler.InvokeCharset(1)
			return
		}

	case c0.SI:
		// Shift In, invoke the G0 charset.
		if handler, implemented := s.handler.(handler.CharsetHandler); implemented {
			handler.InvokeCharset(0)
			return
		}

	case c0.NUL, c0.ENQ, c0.EOT:
		// These have no display effect so they are dropped quietly.
		return

	default:
		s.logger.Warn("invalid c0 character, ignoring", "codepoint", c)
		return
	}
	s.logger.Warn("unimplemented execute", "codepoint", c)
}

func (s *Stream) print(c uint32) {
	if handler, implemented := s.handler.(handler.PrintHandler); implemented {
		handler.Print(c)
	} else {
		s.logger.Warn("unimplemented print", "codepoint", c)
	}
}

// param returns parameter idx of the command, or def when the parameter
// is absent or zero. Most CSI sequences treat zero as "use the default".
func param(c *csi.Command, idx int, def uint16) uint16 {
	if idx >= len(c.Params) || c.Params[idx] == 0 {
		return def
	}
	return c.Params[idx]
}

// noIntermediates reports whether the command carries no intermediate
// bytes, which is what the plain form of most finals requires.
func noIntermediates(c *csi.Command) bool {
	return len(c.Intermediates) == 0
}

// decPrefixed reports whether the command is the DEC private form,
// a single '?' intermediate.
func decPrefixed(c *csi.Command) bool {
	return len(c.Intermediates) == 1 && c.Intermediates[0] == '?'
}

// csiDispatch routes a parsed CSI command to the handler interface that
// covers it. Host-to-terminal sequences are covered; most query traffic
// goes through ReportHandler so the embedder decides how to answer.
//
// Every case returns on a successful dispatch. Falling out of the switch
// means the sequence is either unimplemented or malformed.
func (s *Stream) csiDispatch(c *csi.Command) {
	if s.handler == nil {
		s.logger.Warn("handler is nil, ignoring")
		return
	}

	// by alphabets order of Final character
	switch c.Final {
	case '@':
		// ICH - Insert Blanks
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.InsertBlanks(param(c, 0, 1))
			return
		}

	case 'A', 'k':
		// CUU - Cursor Up
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorUp(param(c, 0, 1), false)
			return
		}

	case 'B':
		// CUD - Cursor Down
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorDown(param(c, 0, 1), false)
			return
		}

	case 'C':
		// CUF - Cursor Forward
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorRight(param(c, 0, 1))
			return
		}

	case 'D', 'j':
		// CUB - Cursor Backward
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorLeft(param(c, 0, 1))
			return
		}

	case 'E':
		// CNL - Cursor Next Line
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorDown(param(c, 0, 1), true)
			return
		}

	case 'F':
		// CPL - Cursor Preceding Line
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorUp(param(c, 0, 1), true)
			return
		}

	case 'G', '`':
		// HPA - Cursor Horizontal Position Absolute
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorCol(param(c, 0, 1))
			return
		}

	case 'H', 'f':
		// CUP - Cursor Position
		// HVP - Horizontal Vertical Position
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorPosition(param(c, 0, 1), param(c, 1, 1))
			return
		}

	case 'I':
		// CHT - Cursor Horizontal Tabulation
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorTabRight(param(c, 0, 1))
			return
		}

	case 'J':
		// ED - Erase in Display. The DECSED form with a '?' prefix is
		// handled the same because we never write protected cells.
		if handler, implemented := s.handler.(handler.EditorHandler); implemented &&
			(noIntermediates(c) || decPrefixed(c)) {
			mode := csi.EDModeBelow
			if len(c.Params) > 0 {
				mode = csi.EDMode(c.Params[0])
			}
			handler.EraseInDisplay(mode)
			return
		}

	case 'K':
		// EL - Erase in Line, and DECSEL just like ED above.
		if handler, implemented := s.handler.(handler.EditorHandler); implemented &&
			(noIntermediates(c) || decPrefixed(c)) {
			mode := csi.ELModeRight
			if len(c.Params) > 0 {
				mode = csi.ELMode(c.Params[0])
			}
			handler.EraseInLine(mode)
			return
		}

	case 'L':
		// IL - Insert Lines
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.InsertLines(param(c, 0, 1))
			return
		}

	case 'M':
		// DL - Delete Lines
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.DeleteLines(param(c, 0, 1))
			return
		}

	case 'P':
		// DCH - Delete Characters
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.DeleteChars(param(c, 0, 1))
			return
		}

	case 'S':
		// SU - Scroll Up
		if handler, implemented := s.handler.(handler.ScrollHandler); implemented && noIntermediates(c) {
			handler.ScrollUp(param(c, 0, 1))
			return
		}

	case 'T':
		// SD - Scroll Down. More than one parameter selects the ancient
		// "initiate highlight mouse tracking" form, which we do not do.
		if handler, implemented := s.handler.(handler.ScrollHandler); implemented &&
			noIntermediates(c) && len(c.Params) <= 1 {
			handler.ScrollDown(param(c, 0, 1))
			return
		}

	case 'X':
		// ECH - Erase Characters
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.EraseChars(param(c, 0, 1))
			return
		}

	case 'Z':
		// CBT - Cursor Backward Tabulation
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorTabLeft(param(c, 0, 1))
			return
		}

	case 'b':
		// REP - Repeat the preceding graphic character
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.RepeatLastChar(param(c, 0, 1))
			return
		}

	case 'c':
		// DA - Primary Device Attributes. Secondary ('>') and tertiary
		// ('=') forms fall through to the warn below.
		if handler, implemented := s.handler.(handler.ReportHandler); implemented &&
			noIntermediates(c) && param(c, 0, 0) == 0 {
			handler.DeviceAttributes()
			return
		}

	case 'd':
		// VPA - Vertical Position Absolute
		if handler, implemented := s.handler.(handler.EditorHandler); implemented && noIntermediates(c) {
			handler.SetCursorRow(param(c, 0, 1))
			return
		}

	case 'g':
		// TBC - Tab Clear
		if handler, implemented := s.handler.(handler.TabHandler); implemented && noIntermediates(c) {
			handler.TabClear(param(c, 0, 0))
			return
		}

	case 'h', 'l':
		// SM / RM - Set and Reset Mode, with the '?' prefix selecting the
		// DEC private namespace.
		handler, implemented := s.handler.(handler.VT100Handler)
		if !implemented {
			break
		}
		if !noIntermediates(c) && !decPrefixed(c) {
			break
		}
		ansiMode := noIntermediates(c)
		for _, modeInt := range c.Params {
			if mode := core.ModeFromInt(int(modeInt), ansiMode); mode != nil {
				handler.SetMode(*mode, c.Final == 'h')
			} else {
				s.logger.Warn("unimplemented mode, ignoring", "mode", modeInt, "ansi", ansiMode)
			}
		}
		return

	case 'm':
		// SGR - Select Graphic Rendition
		if handler, implemented := s.handler.(handler.SGRHandler); implemented && noIntermediates(c) {
			p := sgr.Parser{
				Params:    c.Params,
				ParamsSep: c.ParamsSet,
			}
			for attr := range p.Iter() {
				if attr != nil {
					handler.SetGraphicsRendition(attr)
				}
			}
			return
		}

	case 'n':
		// DSR - Device Status Report. 5 asks for operating status, 6 for
		// the cursor position.
		if handler, implemented := s.handler.(handler.ReportHandler); implemented &&
			noIntermediates(c) && len(c.Params) == 1 {
			handler.DeviceStatusReport(c.Params[0])
			return
		}

	case 'q':
		// DECSCUSR - Set Cursor Style, requires the SP intermediate.
		if handler, implemented := s.handler.(handler.CursorStateHandler); implemented &&
			len(c.Intermediates) == 1 && c.Intermediates[0] == ' ' {
			handler.SetCursorStyle(param(c, 0, 0))
			return
		}

	case 'r':
		// DECSTBM - Set Top and Bottom Margins. A missing or zero bottom
		// means the last line of the screen.
		if handler, implemented := s.handler.(handler.ScrollHandler); implemented && noIntermediates(c) {
			var bottom uint16
			if len(c.Params) > 1 {
				bottom = c.Params[1]
			}
			handler.SetScrollRegion(param(c, 0, 1), bottom)
			return
		}

	case 's':
		// SCOSC - Save Cursor. With parameters this final is DECSLRM
		// which we do not support.
		if handler, implemented := s.handler.(handler.CursorStateHandler); implemented &&
			noIntermediates(c) && len(c.Params) == 0 {
			handler.SaveCursor()
			return
		}

	case 't':
		// XTWINOPS - only the title stack operations are meaningful for a
		// headless terminal, the window manipulation ops are dropped.
		if handler, implemented := s.handler.(handler.TitleHandler); implemented &&
			noIntermediates(c) && len(c.Params) > 0 {
			switch c.Params[0] {
			case 22:
				handler.PushTitle()
			case 23:
				handler.PopTitle()
			}
			return
		}

	case 'u':
		// SCORC - Restore Cursor
		if handler, implemented := s.handler.(handler.CursorStateHandler); implemented &&
			noIntermediates(c) && len(c.Params) == 0 {
			handler.RestoreCursor()
			return
		}
	}

	s.logger.Warn("unimplemented CSI sequence, ignoring", "codepoint", c)
}

// escDispatch routes a parsed escape sequence. Charset designation picks
// its slot from the intermediate byte, everything else keys off the final.
func (s *Stream) escDispatch(c *esc.Command) {
	if s.handler == nil {
		s.logger.Warn("handler is nil, ignoring")
		return
	}

	// Charset designation: ESC ( ) * + followed by the charset byte.
	if len(c.Intermediates) == 1 {
		var slot int
		switch c.Intermediates[0] {
		case '(':
			slot = 0
		case ')':
			slot = 1
		case '*':
			slot = 2
		case '+':
			slot = 3
		case '#':
			// DECALN - Screen Alignment Test
			if c.Final == '8' {
				if handler, implemented := s.handler.(handler.ScreenHandler); implemented {
					handler.ScreenAlignmentTest()
					return
				}
			}
			s.logger.Warn("unimplemented ESC # sequence, ignoring", "codepoint", c)
			return
		default:
			s.logger.Warn("unimplemented ESC sequence, ignoring", "codepoint", c)
			return
		}
		if handler, implemented := s.handler.(handler.CharsetHandler); implemented {
			handler.DesignateCharset(slot, c.Final)
			return
		}
		s.logger.Warn("unimplemented charset designation, ignoring", "codepoint", c)
		return
	}

	switch c.Final {
	case '7':
		// DECSC - Save Cursor
		if handler, implemented := s.handler.(handler.CursorStateHandler); implemented {
			handler.SaveCursor()
			return
		}

	case '8':
		// DECRC - Restore Cursor
		if handler, implemented := s.handler.(handler.CursorStateHandler); implemented {
			handler.RestoreCursor()
			return
		}

	case '=':
		// DECKPAM - Keypad Application Mode
		if handler, implemented := s.handler.(handler.ScreenHandler); implemented {
			handler.SetKeypadApplicationMode(true)
			return
		}

	case '>':
		// DECKPNM - Keypad Numeric Mode
		if handler, implemented := s.handler.(handler.ScreenHandler); implemented {
			handler.SetKeypadApplicationMode(false)
			return
		}

	case 'D':
		// IND - Index
		if handler, implemented := s.handler.(handler.FormatEffectorHandler); implemented {
			handler.Index()
			return
		}

	case 'E':
		// NEL - NextLine
		if handler, implemented := s.handler.(handler.FormatEffectorHandler); implemented {
			handler.NextLine()
			return
		}

	case 'H':
		// HTS - Tabset
		if handler, implemented := s.handler.(handler.FormatEffectorHandler); implemented {
			handler.TabSet()
			return
		}

	case 'M':
		// RI - Reverse Index
		if handler, implemented := s.handler.(handler.FormatEffectorHandler); implemented {
			handler.ReverseIndex()
			return
		}

	case 'c':
		// RIS - Full Reset
		if handler, implemented := s.handler.(handler.FormatEffectorHandler); implemented {
			handler.FullReset()
			return
		}

	case '\\':
		// ST - String terminator
		//  We don't have to do anything.
		return
	}

	s.logger.Warn("unimplemented ESC sequence, ignoring", "codepoint", c)
}

// oscDispatch routes a recognized OSC command to the title and OSC
// handler interfaces.
func (s *Stream) oscDispatch(cmd *osc.Command) {
	if s.handler == nil {
		s.logger.Warn("handler is nil, ignoring")
		return
	}

	switch cmd.Type {
	case osc.CommandChangeWindowTitle:
		if handler, implemented := s.handler.(handler.TitleHandler); implemented {
			handler.ChangeWindowTitle(cmd.Title)
			return
		}

	case osc.CommandChangeWindowIcon:
		// Icon titles are accepted and dropped, there is no icon here.
		return

	case osc.CommandColorOps:
		if handler, implemented := s.handler.(handler.OSCHandler); implemented {
			handler.SetColors(cmd.Colors, cmd.Terminator)
			return
		}

	case osc.CommandResetColor:
		if handler, implemented := s.handler.(handler.OSCHandler); implemented {
			handler.ResetColors(cmd.ResetIndices)
			return
		}

	case osc.CommandHyperlinkStart:
		if handler, implemented := s.handler.(handler.OSCHandler); implemented && cmd.Hyperlink != nil {
			handler.HyperlinkStart(cmd.Hyperlink.ID, cmd.Hyperlink.URI)
			return
		}

	case osc.CommandHyperlinkEnd:
		if handler, implemented := s.handler.(handler.OSCHandler); implemented {
			handler.HyperlinkEnd()
			return
		}

	case osc.CommandClipboard:
		if handler, implemented := s.handler.(handler.OSCHandler); implemented {
			handler.Clipboard(cmd.Clipboard, cmd.Terminator)
			return
		}
	}

	s.logger.Warn("unimplemented OSC command, ignoring", "type", cmd.Type)
}

// consumeUntilGround read the stream until we got the ground state
// then return the number of bytes consumed
func (s *Stream) consumeUntilGround(input []uint8) int {
	offset := 0
	for s.parser.State != parser.StateGround {
		if offset >= len(input) {
			return len(input)
		}
		s.nextNonUtf8(input[offset])
		offset += 1
	}
	return offset
}

// Parse escape sequences back-to-back until none are left.
// Returns the number of bytes consumed from the provided input.
//
// Expects input to start with ansi ESC, use consumeUntilGround first
// if the stream is in the middle of escape sequence.
func (s *Stream) consumeAllEscapes(input []uint8) int {
	offset := 0
	for offset < len(input) && input[offset] == ansi.C0.ESC {
		s.parser.State = parser.StateEscape
		s.parser.Clear()
		offset += 1
		offset += s.consumeUntilGround(input[offset:])
	}
	return offset
}
