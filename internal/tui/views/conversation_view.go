package views

import (
	"fmt"
	"strings"

	mqchatv1 "github.com/matheus3301/mqchat/internal/api/v1"
	"github.com/matheus3301/mqchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationView displays the messages exchanged with one contact,
// oldest first, in the form "sender:\n  body" with the delivery status
// under outgoing messages.
type ConversationView struct {
	*tview.TextView
	theme *ui.Theme
	last  string
}

// NewConversationView creates a new conversation view.
func NewConversationView(theme *ui.Theme) *ConversationView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Conversation ")
	tv.SetBorderColor(theme.BorderColor)
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationView{TextView: tv, theme: theme}
}

// Update redraws the conversation. The view only scrolls when the content changed.
func (cv *ConversationView) Update(label string, msgs []mqchatv1.Message) {
	cv.SetTitle(fmt.Sprintf(" %s ", label))

	text := Render(msgs)
	if text == cv.last {
		return
	}
	cv.last = text
	cv.Clear()
	_, _ = fmt.Fprint(cv, text)
	cv.ScrollToEnd()
}

// Render formats msgs for the view: one block per message separated by a
// blank line, peer text escaped.
func Render(msgs []mqchatv1.Message) string {
	blocks := make([]string, len(msgs))
	for i, m := range msgs {
		blocks[i] = clean(m.Rendered)
	}
	return strings.Join(blocks, "\n\n")
}
