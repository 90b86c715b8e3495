package tui

import (
	"context"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/mqchat/internal/tui/client"
	"github.com/matheus3301/mqchat/internal/tui/keys"
	"github.com/matheus3301/mqchat/internal/tui/model"
	"github.com/matheus3301/mqchat/internal/tui/ui"
	"github.com/matheus3301/mqchat/internal/tui/views"
	"github.com/rivo/tview"
)

const (
	pageMain = "main"
	pageHelp = "help"

	viewContacts     = "contacts"
	viewConversation = "conversation"

	refreshInterval = time.Second
	watchRetry      = 2 * time.Second
	flashDuration   = 5 * time.Second
	callTimeout     = 5 * time.Second
)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	vm        *model.ViewModel
	registry  *keys.Registry
	theme     *ui.Theme
	statusBar *views.StatusBar
	contacts  *views.ContactList
	convView  *views.ConversationView
	composer  *views.Composer
	help      *views.HelpView
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application for identity.
func NewApp(c *client.Client, identity string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		vm:        model.NewViewModel(c),
		registry:  keys.NewRegistry(),
		theme:     theme,
		statusBar: views.NewStatusBar(theme),
		contacts:  views.NewContactList(theme),
		convView:  views.NewConversationView(theme),
		composer:  views.NewComposer(),
		help:      views.NewHelpView(theme),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetIdentity(identity)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.Stop() },
	})
	a.registry.AddGlobal("help", &keys.Action{
		Rune: '?', Key: tcell.KeyRune,
		Description: "?:help", Visible: true,
		Handler: func() { a.showHelp() },
	})
	a.registry.AddGlobal("focus", &keys.Action{
		Key:         tcell.KeyTab,
		Description: "Tab:switch pane", Visible: true,
		Handler: func() { a.toggleFocus() },
	})
	a.registry.AddView(viewContacts, "compose", &keys.Action{
		Rune: 'i', Key: tcell.KeyRune,
		Description: "i:compose", Visible: true,
		Handler: func() { a.app.SetFocus(a.composer) },
	})
	a.registry.AddView(viewContacts, "open", &keys.Action{
		Key:         tcell.KeyEnter,
		Description: "Enter:open", Visible: true,
		Handler: func() { a.openSelected() },
	})
	a.registry.AddView(viewConversation, "compose", &keys.Action{
		Rune: 'i', Key: tcell.KeyRune,
		Description: "i:compose", Visible: true,
		Handler: func() { a.app.SetFocus(a.composer) },
	})
}

func (a *App) setupCallbacks() {
	a.composer.SetOnSend(a.submit)
	a.composer.SetOnBroadcast(func(text string) {
		a.async(func(ctx context.Context) error { return a.vm.SendToAll(ctx, text) }, "Broadcast failed: ")
	})
	a.composer.SetOnKeystroke(func() {
		if a.composer.GetText() == "" || strings.HasPrefix(a.composer.GetText(), "/") {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
			defer cancel()
			if err := a.vm.NotifyTyping(ctx); err != nil && a.ctx.Err() == nil {
				a.app.QueueUpdateDraw(a.render)
			}
		}()
	})
}

func (a *App) setupLayout() {
	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.convView, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	main := tview.NewFlex().
		AddItem(a.contacts, 28, 0, true).
		AddItem(right, 0, 1, false)

	a.pages.AddPage(pageMain, main, true, true)
	a.pages.AddPage(pageHelp, a.help, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			if currentPage == pageHelp {
				a.pages.SwitchToPage(pageMain)
			}
			a.app.SetFocus(a.contacts)
			return nil
		}

		// Let the composer handle all keys except Tab.
		if a.composerFocused() && event.Key() != tcell.KeyTab {
			return event
		}

		if a.registry.HandleEvent(a.focusedView(), event) {
			return nil
		}
		return event
	})
}

func (a *App) focusedView() string {
	if name, _ := a.pages.GetFrontPage(); name == pageHelp {
		return pageHelp
	}
	if a.contactsFocused() {
		return viewContacts
	}
	return viewConversation
}

// Focus may land on a widget or on the tview primitive it embeds.
func (a *App) contactsFocused() bool {
	f := a.app.GetFocus()
	return f == a.contacts || f == a.contacts.Table
}

func (a *App) composerFocused() bool {
	f := a.app.GetFocus()
	return f == a.composer || f == a.composer.InputField
}

func (a *App) toggleFocus() {
	a.pages.SwitchToPage(pageMain)
	if a.contactsFocused() {
		a.app.SetFocus(a.composer)
		return
	}
	a.app.SetFocus(a.contacts)
}

func (a *App) showHelp() {
	a.help.Render(a.registry, viewContacts)
	a.pages.SwitchToPage(pageHelp)
}

func (a *App) openSelected() {
	id := a.contacts.Selected()
	if id == "" {
		return
	}
	a.vm.Open(id)
	a.app.SetFocus(a.composer)
}

// submit handles Enter in the composer. Lines starting with "/" are commands;
// "//" sends the text with one slash removed.
func (a *App) submit(text string) {
	cmd, ok := ParseCommand(text)
	if !ok {
		if strings.HasPrefix(text, "//") {
			text = text[1:]
		}
		a.async(func(ctx context.Context) error { return a.vm.Send(ctx, text) }, "Send failed: ")
		return
	}

	switch cmd.Name {
	case "all":
		if cmd.Args == "" {
			a.flashError("Usage: /all <message>")
			return
		}
		a.async(func(ctx context.Context) error { return a.vm.SendToAll(ctx, cmd.Args) }, "Broadcast failed: ")
	case "chat":
		id, found := a.vm.FindContact(cmd.Args)
		if !found {
			a.flashError("Unknown contact: " + cmd.Args)
			return
		}
		a.contacts.SelectContact(id)
		a.vm.Open(id)
	case "help":
		a.showHelp()
	case "quit":
		a.Stop()
	default:
		a.flashError("Unknown command: /" + cmd.Name)
	}
}

func (a *App) async(fn func(ctx context.Context) error, failure string) {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			a.vm.Flash.Error(failure+err.Error(), flashDuration)
			a.app.QueueUpdateDraw(a.render)
		}
	}()
}

func (a *App) flashError(msg string) {
	a.vm.Flash.Error(msg, flashDuration)
	a.statusBar.SetFlash(a.vm.Flash.Get())
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	defer a.cancel()

	go a.vm.Watch(a.ctx, watchRetry)
	go a.refreshLoop()

	return a.app.Run()
}

// refreshLoop reloads daemon state on every forwarded event, and once per
// interval so expiring typing hints and flashes disappear.
func (a *App) refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	a.refresh()
	for {
		select {
		case <-a.vm.RefreshCh():
		case <-ticker.C:
		case <-a.ctx.Done():
			return
		}
		a.refresh()
	}
}

func (a *App) refresh() {
	ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
	defer cancel()
	if err := a.vm.Refresh(ctx); err != nil && a.ctx.Err() == nil {
		a.vm.Flash.Error("Daemon unreachable: "+err.Error(), flashDuration)
	}
	a.app.QueueUpdateDraw(a.render)
}

// render copies view model state into the widgets. Runs on the UI goroutine.
func (a *App) render() {
	contacts := a.vm.Contacts()
	a.contacts.Update(contacts)
	if a.vm.Active() == "" && len(contacts) > 0 {
		a.vm.Open(a.contacts.Selected())
	}

	label, msgs := a.vm.Conversation()
	a.convView.Update(label, msgs)

	a.statusBar.SetStatus(a.vm.Status())
	a.statusBar.SetTyping(a.vm.TypingContact())
	a.statusBar.SetFlash(a.vm.Flash.Get())
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
