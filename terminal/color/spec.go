package color

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSpec parses an OSC color specification. Both common encodings
// are accepted: the X11 "rgb:RR/GG/BB" form with one to four hex digits
// per channel, and "#rrggbb". Channels longer than two digits keep only
// the most significant byte, which is how X resolves them.
func ParseSpec(s string) (RGB, error) {
	if rest, ok := strings.CutPrefix(s, "rgb:"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) != 3 {
			return RGB{}, fmt.Errorf("invalid rgb spec %q", s)
		}
		var channels [3]uint8
		for i, part := range parts {
			if len(part) == 0 || len(part) > 4 {
				return RGB{}, fmt.Errorf("invalid rgb channel %q", part)
			}
			v, err := strconv.ParseUint(part, 16, 16)
			if err != nil {
				return RGB{}, fmt.Errorf("invalid rgb channel %q: %w", part, err)
			}
			// Scale to the top byte: "f" means 0xFF, "ff" is itself,
			// "ffff" also 0xFF.
			switch len(part) {
			case 1:
				channels[i] = uint8(v<<4 | v)
			case 2:
				channels[i] = uint8(v)
			case 3:
				channels[i] = uint8(v >> 4)
			case 4:
				channels[i] = uint8(v >> 8)
			}
		}
		return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
	}
	return FromHex(s)
}
