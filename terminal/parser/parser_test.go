package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParserNext(t *testing.T) {
	tcs := []struct {
		name     string
		previous []uint8
		curr     uint8
		expected func(*testing.T, [3]*Action)
	}{
		{
			name:     "esc: ESC ( B -- 0x1B 0x28 0x42",
			previous: []uint8{0x1B, '('},
			curr:     'B',
			expected: func(t *testing.T, actions [3]*Action) {
				assert.Nil(t, actions[0])
				assert.NotNil(t, actions[1].ESCDispatchData)
				assert.Nil(t, actions[2])

				d := actions[1].ESCDispatchData
				assert.EqualValues(t, 'B', d.Final)
				assert.EqualValues(t, 1, len(d.Intermediates))
				assert.EqualValues(t, '(', d.Intermediates[0])
			},
		},
		{
			name:     "csi: CSI ( B",
			previous: []uint8{0x9B, '('},
			curr:     'B',
			expected: func(t *testing.T, actions [3]*Action) {
				assert.Nil(t, actions[0])
				assert.NotNil(t, actions[1].CSIDispatchData)
				assert.Nil(t, actions[2])

				d := actions[1].CSIDispatchData
				assert.EqualValues(t, 'B', d.Final)
				assert.EqualValues(t, 1, len(d.Intermediates))
				assert.EqualValues(t, '(', d.Intermediates[0])
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser()
			for _, prev := range tc.previous {
				p.Next(prev)
			}
			actions := p.Next(tc.curr)
			tc.expected(t, actions)
		})
	}
}

func feed(p *Parser, input string) [3]*Action {
	var actions [3]*Action
	for i := 0; i < len(input); i++ {
		actions = p.Next(input[i])
	}
	return actions
}

func TestParserParamOverflowStillDispatches(t *testing.T) {
	p := NewParser()
	input := "\x1b["
	for range 24 {
		input += "5;"
	}
	actions := feed(p, input+"m")

	d := actions[1]
	assert.NotNil(t, d)
	assert.NotNil(t, d.CSIDispatchData)
	assert.EqualValues(t, 'm', d.CSIDispatchData.Final)
	assert.Len(t, d.CSIDispatchData.Params, MaxParams)
	assert.True(t, d.CSIDispatchData.Ignored)
}

func TestParserParamsWithinCap(t *testing.T) {
	p := NewParser()
	actions := feed(p, "\x1b[1;2;3H")

	d := actions[1].CSIDispatchData
	assert.NotNil(t, d)
	assert.False(t, d.Ignored)
	assert.Equal(t, []uint16{1, 2, 3}, d.Params)
}

func TestParserOSCBelTerminated(t *testing.T) {
	p := NewParser()
	actions := feed(p, "\x1b]0;hello world\x07")

	d := actions[0]
	assert.NotNil(t, d)
	assert.Equal(t, ActionOSCEnd, d.Type)
	assert.NotNil(t, d.OSCDispatchData)
	assert.Equal(t, "hello world", d.OSCDispatchData.Title)
	assert.Equal(t, StateGround, p.State)
}

func TestParserOSCStTerminated(t *testing.T) {
	p := NewParser()
	feed(p, "\x1b]2;title")
	actions := p.Next(0x1b)

	d := actions[0]
	assert.NotNil(t, d)
	assert.Equal(t, ActionOSCEnd, d.Type)
	assert.NotNil(t, d.OSCDispatchData)
	assert.Equal(t, "title", d.OSCDispatchData.Title)
}

func TestParserC0InterruptsCSI(t *testing.T) {
	p := NewParser()
	feed(p, "\x1b[3")
	actions := p.Next(0x0A)

	assert.NotNil(t, actions[1])
	assert.Equal(t, ActionExecute, actions[1].Type)
	// The sequence continues after the interruption.
	actions = p.Next('A')
	assert.NotNil(t, actions[1].CSIDispatchData)
	assert.Equal(t, []uint16{3}, actions[1].CSIDispatchData.Params)
}

func TestParserColonSubParams(t *testing.T) {
	p := NewParser()
	actions := feed(p, "\x1b[38:2:10:20:30m")

	d := actions[1].CSIDispatchData
	assert.NotNil(t, d)
	assert.Equal(t, []uint16{38, 2, 10, 20, 30}, d.Params)
	assert.True(t, d.ParamsSet.IsSet(0))
}
