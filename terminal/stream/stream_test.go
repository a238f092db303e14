package stream

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridterm/gridterm/logger"
	"github.com/gridterm/gridterm/terminal/core"
	"github.com/gridterm/gridterm/terminal/sequences/csi"
	"github.com/gridterm/gridterm/terminal/sequences/osc"
	"github.com/gridterm/gridterm/terminal/sgr"
)

var testLogger = logger.New(logger.Options{
	Buffer: io.Discard,
	Level:  logger.ErrorLevel,
	Type:   logger.TypeText,
})

// recorder implements every handler interface and records each callback
// as a short op string so tests can assert on dispatch order.
type recorder struct {
	ops []string
}

func (r *recorder) record(format string, args ...any) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

func (r *recorder) Print(cp uint32) { r.record("print:%c", rune(cp)) }

func (r *recorder) NextLine()     { r.record("nel") }
func (r *recorder) Index()        { r.record("ind") }
func (r *recorder) ReverseIndex() { r.record("ri") }
func (r *recorder) TabSet()       { r.record("hts") }
func (r *recorder) FullReset()    { r.record("ris") }

func (r *recorder) SetGraphicsRendition(attr *sgr.Attribute) { r.record("sgr:%d", attr.Type) }

func (r *recorder) SetMode(mode core.Mode, value bool) { r.record("mode:%d=%v", mode.Value, value) }

func (r *recorder) DeleteChars(repeated uint16)            { r.record("dch:%d", repeated) }
func (r *recorder) DeleteLines(repeated uint16)            { r.record("dl:%d", repeated) }
func (r *recorder) InsertLines(repeated uint16)            { r.record("il:%d", repeated) }
func (r *recorder) InsertBlanks(repeated uint16)           { r.record("ich:%d", repeated) }
func (r *recorder) EraseInLine(mode csi.ELMode)            { r.record("el:%d", mode) }
func (r *recorder) EraseInDisplay(mode csi.EDMode)         { r.record("ed:%d", mode) }
func (r *recorder) LineFeed()                              { r.record("lf") }
func (r *recorder) Backspace()                             { r.record("bs") }
func (r *recorder) SetCursorRow(row uint16)                { r.record("vpa:%d", row) }
func (r *recorder) SetCursorCol(col uint16)                { r.record("hpa:%d", col) }
func (r *recorder) SetCursorPosition(row, col uint16)      { r.record("cup:%d,%d", row, col) }
func (r *recorder) SetCursorUp(off uint16, carriage bool)  { r.record("up:%d,%v", off, carriage) }
func (r *recorder) SetCursorDown(off uint16, carriage bool) {
	r.record("down:%d,%v", off, carriage)
}
func (r *recorder) SetCursorLeft(off uint16)         { r.record("left:%d", off) }
func (r *recorder) SetCursorRight(off uint16)        { r.record("right:%d", off) }
func (r *recorder) SetCursorTabRight(n uint16)       { r.record("cht:%d", n) }
func (r *recorder) SetCursorTabLeft(n uint16)        { r.record("cbt:%d", n) }
func (r *recorder) CarriageReturn()                  { r.record("cr") }
func (r *recorder) EraseChars(repeated uint16)       { r.record("ech:%d", repeated) }
func (r *recorder) RepeatLastChar(repeated uint16)   { r.record("rep:%d", repeated) }
func (r *recorder) Bell()                            { r.record("bel") }

func (r *recorder) ScrollUp(n uint16)                { r.record("su:%d", n) }
func (r *recorder) ScrollDown(n uint16)              { r.record("sd:%d", n) }
func (r *recorder) SetScrollRegion(top, bot uint16)  { r.record("stbm:%d,%d", top, bot) }

func (r *recorder) SaveCursor()                { r.record("decsc") }
func (r *recorder) RestoreCursor()             { r.record("decrc") }
func (r *recorder) SetCursorStyle(style uint16) { r.record("cusr:%d", style) }

func (r *recorder) TabClear(mode uint16) { r.record("tbc:%d", mode) }

func (r *recorder) DesignateCharset(slot int, charset uint8) {
	r.record("designate:%d,%c", slot, charset)
}
func (r *recorder) InvokeCharset(slot int) { r.record("invoke:%d", slot) }

func (r *recorder) DeviceStatusReport(req uint16) { r.record("dsr:%d", req) }
func (r *recorder) DeviceAttributes()             { r.record("da") }

func (r *recorder) ChangeWindowTitle(title string) { r.record("title:%s", title) }
func (r *recorder) PushTitle()                     { r.record("pushtitle") }
func (r *recorder) PopTitle()                      { r.record("poptitle") }

func (r *recorder) SetColors(ops []osc.ColorOp, _ osc.Terminator) {
	for _, op := range ops {
		r.record("color:%d=%s", op.Index, op.Spec)
	}
}
func (r *recorder) ResetColors(indices []uint16) { r.record("resetcolor:%d", len(indices)) }
func (r *recorder) HyperlinkStart(id, uri string) { r.record("link:%s,%s", id, uri) }
func (r *recorder) HyperlinkEnd()                 { r.record("linkend") }
func (r *recorder) Clipboard(c *osc.Clipboard, _ osc.Terminator) {
	r.record("clipboard:%s", c.Data)
}

func (r *recorder) ScreenAlignmentTest()                 { r.record("decaln") }
func (r *recorder) SetKeypadApplicationMode(enabled bool) { r.record("keypad:%v", enabled) }

func run(t *testing.T, input string) *recorder {
	t.Helper()
	r := &recorder{}
	s := NewStream(r, testLogger)
	s.NextSlice([]byte(input))
	return r
}

func TestStreamPlainText(t *testing.T) {
	r := run(t, "Hi")
	assert.Equal(t, []string{"print:H", "print:i"}, r.ops)
}

func TestStreamClearHomeColored(t *testing.T) {
	r := run(t, "\x1b[2J\x1b[H\x1b[31mHi\x1b[0m")
	assert.Equal(t, []string{
		fmt.Sprintf("ed:%d", csi.EDModeComplete),
		"cup:1,1",
		fmt.Sprintf("sgr:%d", sgr.AttributeTypeFgNamed),
		"print:H",
		"print:i",
		fmt.Sprintf("sgr:%d", sgr.AttributeTypeUnset),
	}, r.ops)
}

func TestStreamCursorMovement(t *testing.T) {
	r := run(t, "\x1b[C\x1b[2D\x1b[3A\x1b[B\x1b[5;7H")
	assert.Equal(t, []string{
		"right:1",
		"left:2",
		"up:3,false",
		"down:1,false",
		"cup:5,7",
	}, r.ops)
}

func TestStreamC0Controls(t *testing.T) {
	r := run(t, "a\rb\n\x08\x07\x0e\x0f")
	assert.Equal(t, []string{
		"print:a", "cr", "print:b", "lf", "bs", "bel",
		"invoke:1", "invoke:0",
	}, r.ops)
}

func TestStreamModes(t *testing.T) {
	r := run(t, "\x1b[?1049h\x1b[4h\x1b[?25l\x1b[?7;1l")
	assert.Equal(t, []string{
		"mode:1049=true",
		"mode:4=true",
		"mode:25=false",
		"mode:7=false",
		"mode:1=false",
	}, r.ops)
}

func TestStreamScrollAndRegion(t *testing.T) {
	r := run(t, "\x1b[5;10r\x1b[2S\x1b[T\x1b[r")
	assert.Equal(t, []string{
		"stbm:5,10",
		"su:2",
		"sd:1",
		"stbm:1,0",
	}, r.ops)
}

func TestStreamEraseAndEdit(t *testing.T) {
	r := run(t, "\x1b[3X\x1b[2P\x1b[M\x1b[2L\x1b[4@\x1b[1K\x1b[2b")
	assert.Equal(t, []string{
		"ech:3",
		"dch:2",
		"dl:1",
		"il:2",
		"ich:4",
		fmt.Sprintf("el:%d", csi.ELModeLeft),
		"rep:2",
	}, r.ops)
}

func TestStreamCursorStateAndStyle(t *testing.T) {
	r := run(t, "\x1b7\x1b8\x1b[s\x1b[u\x1b[4 q")
	assert.Equal(t, []string{
		"decsc", "decrc", "decsc", "decrc", "cusr:4",
	}, r.ops)
}

func TestStreamCharsets(t *testing.T) {
	r := run(t, "\x1b(0\x1b)B\x1b(B")
	assert.Equal(t, []string{
		"designate:0,0",
		"designate:1,B",
		"designate:0,B",
	}, r.ops)
}

func TestStreamReports(t *testing.T) {
	r := run(t, "\x1b[6n\x1b[5n\x1b[c\x1b[0c")
	assert.Equal(t, []string{
		"dsr:6", "dsr:5", "da", "da",
	}, r.ops)
}

func TestStreamEscapeEffectors(t *testing.T) {
	r := run(t, "\x1bD\x1bE\x1bM\x1bH\x1b#8\x1b=\x1b>\x1bc")
	assert.Equal(t, []string{
		"ind", "nel", "ri", "hts", "decaln",
		"keypad:true", "keypad:false", "ris",
	}, r.ops)
}

func TestStreamOSCTitle(t *testing.T) {
	r := run(t, "\x1b]0;hello world\x07after")
	require.GreaterOrEqual(t, len(r.ops), 1)
	assert.Equal(t, "title:hello world", r.ops[0])
	assert.Equal(t, []string{
		"print:a", "print:f", "print:t", "print:e", "print:r",
	}, r.ops[1:])
}

func TestStreamOSCHyperlink(t *testing.T) {
	r := run(t, "\x1b]8;id=x;https://example.com\x1b\\Z\x1b]8;;\x1b\\")
	assert.Equal(t, []string{
		"link:x,https://example.com",
		"print:Z",
		"linkend",
	}, r.ops)
}

func TestStreamOSCColors(t *testing.T) {
	r := run(t, "\x1b]4;1;#ff0000\x07\x1b]104;1\x07")
	assert.Equal(t, []string{
		"color:1=#ff0000",
		"resetcolor:1",
	}, r.ops)
}

func TestStreamTitleStack(t *testing.T) {
	r := run(t, "\x1b[22;0t\x1b[23;0t")
	assert.Equal(t, []string{"pushtitle", "poptitle"}, r.ops)
}

func TestStreamUTF8MixedWithEscapes(t *testing.T) {
	r := run(t, "h\xc3\xa9\x1b[31m\xe2\x9c\x97")
	assert.Equal(t, []string{
		"print:h",
		"print:é",
		fmt.Sprintf("sgr:%d", sgr.AttributeTypeFgNamed),
		"print:✗",
	}, r.ops)
}

func TestStreamSplitAcrossCalls(t *testing.T) {
	// A CSI sequence and a UTF-8 character both split across the chunk
	// boundary have to survive.
	r := &recorder{}
	s := NewStream(r, testLogger)
	input := "\x1b[3"
	s.NextSlice([]byte(input))
	s.NextSlice([]byte("1m\xe2\x9c"))
	s.NextSlice([]byte("\x97"))
	assert.Equal(t, []string{
		fmt.Sprintf("sgr:%d", sgr.AttributeTypeFgNamed),
		"print:✗",
	}, r.ops)
}

func TestStreamLargeInput(t *testing.T) {
	// Larger than MaxCodePoints to exercise the chunk splitting.
	input := strings.Repeat("x", MaxCodePoints+100)
	r := run(t, input)
	assert.Equal(t, MaxCodePoints+100, len(r.ops))
	assert.Equal(t, "print:x", r.ops[0])
	assert.Equal(t, "print:x", r.ops[len(r.ops)-1])
}

func TestStreamUnimplementedSequenceIgnored(t *testing.T) {
	// Unknown finals and private sequences must not break the stream.
	r := run(t, "\x1b[>4;2mok")
	assert.Equal(t, []string{"print:o", "print:k"}, r.ops)
}
