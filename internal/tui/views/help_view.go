package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/mqchat/internal/tui/keys"
	"github.com/matheus3301/mqchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays the key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	return &HelpView{TextView: tv, theme: theme}
}

// Render lists the registry's bindings followed by the composer commands.
func (hv *HelpView) Render(r *keys.Registry, views ...string) {
	kc := ui.Tag(hv.theme.KeyColor)

	var b strings.Builder
	b.WriteString("\n  [::b]Keys[-:-:-]\n\n")
	for _, h := range r.Hints(views...) {
		key, desc, _ := strings.Cut(h, ":")
		fmt.Fprintf(&b, "  %s%-8s[-] %s\n", kc, tview.Escape(key), desc)
	}
	b.WriteString("\n  [::b]Composer[-:-:-]\n\n")
	fmt.Fprintf(&b, "  %s%-8s[-] %s\n", kc, "Enter", "send to the open conversation")
	fmt.Fprintf(&b, "  %s%-8s[-] %s\n", kc, "Ctrl-B", "send to every contact")
	fmt.Fprintf(&b, "  %s%-8s[-] %s\n", kc, "/all", "send the rest of the line to every contact")
	fmt.Fprintf(&b, "  %s%-8s[-] %s\n", kc, "/chat", "open a conversation by name")
	fmt.Fprintf(&b, "  %s%-8s[-] %s\n", kc, "/quit", "quit")

	hv.Clear()
	_, _ = fmt.Fprint(hv, b.String())
}
