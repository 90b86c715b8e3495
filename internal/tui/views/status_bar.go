package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/mqchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar displays the identity, transport state, typing hint and flash.
type StatusBar struct {
	*tview.TextView
	theme    *ui.Theme
	identity string
	status   string
	typing   string
	flash    string
	flashErr bool
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme}
}

// SetIdentity updates the identity display.
func (sb *StatusBar) SetIdentity(identity string) {
	sb.identity = identity
	sb.render()
}

// SetStatus updates the transport status display.
func (sb *StatusBar) SetStatus(status string) {
	sb.status = status
	sb.render()
}

// SetTyping shows "<contact> is typing..." or clears the hint when contact is empty.
func (sb *StatusBar) SetTyping(contact string) {
	sb.typing = contact
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string, isErr bool) {
	sb.flash = msg
	sb.flashErr = isErr
	sb.render()
}

// Text returns the plain content of the bar without color tags.
func (sb *StatusBar) Text() string {
	return sb.GetText(true)
}

func (sb *StatusBar) render() {
	sb.Clear()

	statusColor := sb.theme.StatusBadColor
	if sb.status == "ONLINE" {
		statusColor = sb.theme.StatusOkColor
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s%s[-] | %s",
		tview.Escape(sb.identity), ui.Tag(statusColor), sb.status, time.Now().Format("15:04"))
	if sb.typing != "" {
		line += fmt.Sprintf(" | %s%s is typing...[-]", ui.Tag(sb.theme.TypingColor), tview.Escape(sb.typing))
	}
	if sb.flash != "" {
		color := sb.theme.FlashInfoColor
		if sb.flashErr {
			color = sb.theme.FlashErrColor
		}
		line += fmt.Sprintf(" | %s%s[-]", ui.Tag(color), tview.Escape(sb.flash))
	}

	_, _ = fmt.Fprint(sb, line)
}
