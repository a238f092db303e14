// Package dcs accumulates device control strings. DCS differs from CSI
// and OSC in that the payload streams in after the hook, so collecting
// it is stateful.
package dcs

import "fmt"

// DCS is the hook header: everything between ESC P and the payload.
type DCS struct {
	Intermediates []uint8
	Params        []uint16
	Final         uint8
}

func (c *DCS) String() string {
	return fmt.Sprintf("DCS %v %v %c", c.Intermediates, c.Params, c.Final)
}

type CommandType int

const (
	// CommandNone is an unrecognized or oversized string, consumed and
	// dropped.
	CommandNone CommandType = iota

	// CommandSixel is a sixel image payload (final 'q', no '+').
	CommandSixel

	// CommandGetTcap is XTGETTCAP (DCS + q), a terminfo capability
	// query with hex-encoded capability names.
	CommandGetTcap
)

// Command is one completed device control string.
type Command struct {
	Type    CommandType
	Payload []byte
}

// Payloads beyond this size are truncated; a runaway DCS must not
// buffer unbounded memory.
const maxPayload = 1 << 16

type (
	HookHandler   interface{ DCSHook(*DCS) *Command }
	UnhookHandler interface{ DCSUnhook() *Command }
	PutHandler    interface{ DCSPut(uint8) *Command }

	// Handler aggregates the three hooks the stream dispatches.
	Handler interface {
		HookHandler
		UnhookHandler
		PutHandler
	}
)

// Accumulator is the stock Handler: it classifies the hook, buffers the
// payload up to maxPayload, and emits the finished command on unhook.
type Accumulator struct {
	active    CommandType
	hooked    bool
	payload   []byte
	truncated bool
}

func (a *Accumulator) DCSHook(d *DCS) *Command {
	a.hooked = true
	a.payload = a.payload[:0]
	a.truncated = false

	switch {
	case d.Final == 'q' && hasIntermediate(d, '+'):
		a.active = CommandGetTcap
	case d.Final == 'q' && len(d.Intermediates) == 0:
		a.active = CommandSixel
	default:
		a.active = CommandNone
	}
	return nil
}

func (a *Accumulator) DCSPut(c uint8) *Command {
	if !a.hooked {
		return nil
	}
	if len(a.payload) >= maxPayload {
		a.truncated = true
		return nil
	}
	a.payload = append(a.payload, c)
	return nil
}

func (a *Accumulator) DCSUnhook() *Command {
	if !a.hooked {
		return nil
	}
	a.hooked = false
	if a.active == CommandNone || a.truncated {
		return nil
	}
	payload := make([]byte, len(a.payload))
	copy(payload, a.payload)
	return &Command{Type: a.active, Payload: payload}
}

func hasIntermediate(d *DCS, b uint8) bool {
	for _, i := range d.Intermediates {
		if i == b {
			return true
		}
	}
	return false
}
