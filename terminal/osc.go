package terminal

import (
	"encoding/base64"
	"fmt"

	"github.com/gridterm/gridterm/terminal/color"
	"github.com/gridterm/gridterm/terminal/core"
	"github.com/gridterm/gridterm/terminal/grid"
	"github.com/gridterm/gridterm/terminal/sequences/osc"
)

// The title stack is bounded like xterm's: pushes past the limit drop
// the oldest entry.
const maxTitleStack = 10

func (t *Terminal) respond(s string) {
	if t.reply == nil {
		return
	}
	if _, err := t.reply.Write([]byte(s)); err != nil {
		t.logger.Warn("failed to write query response", "err", err)
	}
}

// DeviceStatusReport answers DSR. 5 is operating status, 6 the cursor
// position report (origin-relative when origin mode is on).
func (t *Terminal) DeviceStatusReport(req uint16) {
	switch req {
	case 5:
		t.respond("\x1b[0n")
	case 6:
		row := int(t.cursor.Y) + 1
		if t.Modes.Get(core.ModeOrigin) {
			row -= int(t.scrollingRegion.top)
		}
		t.respond(fmt.Sprintf("\x1b[%d;%dR", row, int(t.cursor.X)+1))
	default:
		t.logger.Warn("unimplemented status report, ignoring", "req", req)
	}
}

// DeviceAttributes answers primary DA claiming VT102.
func (t *Terminal) DeviceAttributes() {
	t.respond("\x1b[?6c")
}

func (t *Terminal) ChangeWindowTitle(title string) {
	t.title = title
}

func (t *Terminal) PushTitle() {
	if len(t.titleStack) >= maxTitleStack {
		t.titleStack = t.titleStack[1:]
	}
	t.titleStack = append(t.titleStack, t.title)
}

func (t *Terminal) PopTitle() {
	if len(t.titleStack) == 0 {
		return
	}
	t.title = t.titleStack[len(t.titleStack)-1]
	t.titleStack = t.titleStack[:len(t.titleStack)-1]
}

// SetColors applies OSC 4/10/11/12 operations: sets mutate the live
// palette, queries answer with the current value in the same format
// (and the same terminator) the client used.
func (t *Terminal) SetColors(ops []osc.ColorOp, terminator osc.Terminator) {
	for _, op := range ops {
		if int(op.Index) >= color.Count {
			t.logger.Warn("color index out of range, ignoring", "index", op.Index)
			continue
		}
		if op.Query {
			t.respond(colorQueryReply(op.Index, t.palette[op.Index], terminator))
			continue
		}
		rgb, err := color.ParseSpec(op.Spec)
		if err != nil {
			t.logger.Warn("invalid color spec, ignoring", "spec", op.Spec, "err", err)
			continue
		}
		t.palette[op.Index] = rgb
	}
}

func colorQueryReply(index uint16, rgb color.RGB, terminator osc.Terminator) string {
	// Responses use 16-bit channels, the byte doubled the way X scales.
	spec := fmt.Sprintf("rgb:%02x%02x/%02x%02x/%02x%02x",
		rgb.R, rgb.R, rgb.G, rgb.G, rgb.B, rgb.B)
	switch index {
	case uint16(color.Foreground):
		return fmt.Sprintf("\x1b]10;%s%s", spec, terminator.Bytes())
	case uint16(color.Background):
		return fmt.Sprintf("\x1b]11;%s%s", spec, terminator.Bytes())
	case uint16(color.Cursor):
		return fmt.Sprintf("\x1b]12;%s%s", spec, terminator.Bytes())
	default:
		return fmt.Sprintf("\x1b]4;%d;%s%s", index, spec, terminator.Bytes())
	}
}

// ResetColors restores palette entries to their configured defaults.
// An empty index list (plain OSC 104) resets the whole 256-color table.
func (t *Terminal) ResetColors(indices []uint16) {
	if len(indices) == 0 {
		copy(t.palette[:256], t.defaultPalette[:256])
		return
	}
	for _, idx := range indices {
		if int(idx) >= color.Count {
			continue
		}
		t.palette[idx] = t.defaultPalette[idx]
	}
}

// HyperlinkStart makes every following printed cell carry the link
// until HyperlinkEnd.
func (t *Terminal) HyperlinkStart(id, uri string) {
	t.pen.Hyperlink = &grid.Hyperlink{ID: id, URI: uri}
}

func (t *Terminal) HyperlinkEnd() {
	t.pen.Hyperlink = nil
}

// Clipboard handles OSC 52: writes store the decoded payload, queries
// answer it back base64-encoded.
func (t *Terminal) Clipboard(c *osc.Clipboard, terminator osc.Terminator) {
	if c == nil {
		return
	}
	if c.Query {
		data := base64.StdEncoding.EncodeToString([]byte(t.clipboards[c.Selection]))
		t.respond(fmt.Sprintf("\x1b]52;%c;%s%s", c.Selection, data, terminator.Bytes()))
		return
	}
	t.clipboards[c.Selection] = c.Data
}
