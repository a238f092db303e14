package gridterm

import (
	"github.com/gridterm/gridterm/logger"
	"github.com/gridterm/gridterm/terminal"
	"github.com/gridterm/gridterm/terminal/sequences/dcs"
	"github.com/gridterm/gridterm/terminal/sgr"
)

// streamHandler is what the stream drives. The terminal implements the
// whole display surface itself; this wrapper adds the stateful DCS
// accumulation the terminal has no use for, and the logging around
// attributes the terminal would silently apply.
//
// It is stateful and lives for the lifetime of the core; the DCS
// accumulator carries state across chunk boundaries.
type streamHandler struct {
	*terminal.Terminal

	dcs    dcs.Accumulator
	logger logger.Logger
}

func (s *streamHandler) DCSHook(d *dcs.DCS) *dcs.Command {
	return s.dcs.DCSHook(d)
}

func (s *streamHandler) DCSPut(c uint8) *dcs.Command {
	return s.dcs.DCSPut(c)
}

func (s *streamHandler) DCSUnhook() *dcs.Command {
	cmd := s.dcs.DCSUnhook()
	if cmd == nil {
		return nil
	}
	// Recognized device control strings are consumed but not rendered.
	switch cmd.Type {
	case dcs.CommandSixel:
		s.logger.Info("dropping sixel payload", "bytes", len(cmd.Payload))
	case dcs.CommandGetTcap:
		s.logger.Debug("ignoring XTGETTCAP query", "bytes", len(cmd.Payload))
	}
	return cmd
}

func (s *streamHandler) SetGraphicsRendition(attr *sgr.Attribute) {
	if attr.Type == sgr.AttributeTypeUnknown {
		s.logger.Warn("unknown SGR attribute, ignoring", "attribute", attr)
		return
	}
	s.Terminal.SetGraphicsRendition(attr)
}
