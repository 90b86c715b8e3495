package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Composer is the text input for sending messages. Enter sends to the open
// conversation, Ctrl-B sends to every contact.
type Composer struct {
	*tview.InputField
	onSend      func(text string)
	onBroadcast func(text string)
	onKeystroke func()
}

// NewComposer creates a new message composer.
func NewComposer() *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)

	c := &Composer{InputField: input}

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			c.submit(c.onSend)
		}
	})
	input.SetChangedFunc(func(string) {
		if c.onKeystroke != nil {
			c.onKeystroke()
		}
	})
	input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlB {
			c.submit(c.onBroadcast)
			return nil
		}
		return event
	})

	return c
}

func (c *Composer) submit(fn func(string)) {
	text := c.GetText()
	if text == "" || fn == nil {
		return
	}
	fn(text)
	c.SetText("")
}

// SetOnSend sets the callback for Enter.
func (c *Composer) SetOnSend(fn func(text string)) {
	c.onSend = fn
}

// SetOnBroadcast sets the callback for Ctrl-B.
func (c *Composer) SetOnBroadcast(fn func(text string)) {
	c.onBroadcast = fn
}

// SetOnKeystroke sets the callback run whenever the text changes.
func (c *Composer) SetOnKeystroke(fn func()) {
	c.onKeystroke = fn
}
