package views

import (
	mqchatv1 "github.com/matheus3301/mqchat/internal/api/v1"
	"github.com/matheus3301/mqchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// ContactList is the left-hand list of conversations. Rows show the display
// label, which carries the unread count, plus a typing marker.
type ContactList struct {
	*tview.Table
	theme    *ui.Theme
	contacts []mqchatv1.Contact
}

// NewContactList creates a new contact table.
func NewContactList(theme *ui.Theme) *ContactList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Contacts ")
	table.SetBorderColor(theme.BorderColor)
	table.SetTitleColor(theme.TitleColor)

	return &ContactList{Table: table, theme: theme}
}

// Update refreshes the rows, keeping the selected contact selected.
func (cl *ContactList) Update(contacts []mqchatv1.Contact) {
	selected := cl.Selected()
	cl.contacts = contacts
	cl.Clear()

	row := 0
	for i, c := range contacts {
		cell := tview.NewTableCell(" " + c.Label).SetExpansion(1)
		if c.Unread > 0 {
			cell.SetTextColor(cl.theme.UnreadColor)
		}
		cl.SetCell(i, 0, cell)

		marker := tview.NewTableCell("  ")
		if c.Typing {
			marker = tview.NewTableCell(" …").SetTextColor(cl.theme.TypingColor)
		}
		cl.SetCell(i, 1, marker)

		if c.ID == selected {
			row = i
		}
	}
	if len(contacts) > 0 {
		cl.Select(row, 0)
	}
}

// Selected returns the id of the highlighted contact, or "" if the list is empty.
func (cl *ContactList) Selected() string {
	row, _ := cl.GetSelection()
	if row >= 0 && row < len(cl.contacts) {
		return cl.contacts[row].ID
	}
	return ""
}

// SelectContact highlights id if it is listed. Returns false otherwise.
func (cl *ContactList) SelectContact(id string) bool {
	for i, c := range cl.contacts {
		if c.ID == id {
			cl.Select(i, 0)
			return true
		}
	}
	return false
}
