package adapter

import (
	"fmt"
	"strings"

	"github.com/kapu/interrupt-bot-go/internal/domain"
)

// ResponseFormatter renders every user-facing reply and admin notice. The
// templates are fixed; tests assert on them verbatim.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

// FormatInterrupt renders the on-call ping, e.g.
// "<@tyrion> <@jaime>: you have an interrupt from <@jon> ^^".
func (f *ResponseFormatter) FormatInterrupt(handles []string, requester string) string {
	var b strings.Builder
	for i, handle := range handles {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "<@%s>", handle)
	}
	fmt.Fprintf(&b, ": you have an interrupt from <@%s> ^^", requester)
	return b.String()
}

// FormatRoster lists the roster in insertion order.
func (f *ResponseFormatter) FormatRoster(roster *domain.Roster) string {
	if roster.IsEmpty() {
		return "The team roster is empty"
	}

	parts := make([]string, 0, roster.Len())
	for _, entry := range roster.Entries() {
		parts = append(parts, fmt.Sprintf("<@%s> => %s", entry.Handle, entry.TrelloUsername))
	}
	return "The team roster is " + strings.Join(parts, ", ")
}

func (f *ResponseFormatter) FormatUserAdded(username, handle string) string {
	return fmt.Sprintf("Trello user %q (<@%s>) added!", username, handle)
}

func (f *ResponseFormatter) FormatUserRemoved(username, handle string) string {
	return fmt.Sprintf("Trello user %q (<@%s>) removed!", username, handle)
}

func (f *ResponseFormatter) FormatUserNotFound(username string) string {
	return fmt.Sprintf("Trello user %q not found!", username)
}

func (f *ResponseFormatter) FormatNotOnRoster(handle string) string {
	return fmt.Sprintf("<@%s> is not on the team roster.", handle)
}

// Admin notices, delivered out of band.

func (f *ResponseFormatter) RosterAbsentNotice() string {
	return "You must add some users to the team roster. " +
		"You will need each member's slack handle and trello user name."
}

func (f *ResponseFormatter) BoardNotFoundNotice(boardName string) string {
	return fmt.Sprintf("Trello team board %q not found! "+
		`Set "TRELLO_BOARD_NAME" and restart me, please.`, boardName)
}

func (f *ResponseFormatter) CardNotFoundNotice() string {
	return "Interrupt card not found! Your team " +
		`trello board needs a list with a card titled "Interrupt".`
}

func (f *ResponseFormatter) MultipleCardsNotice() string {
	return "Multiple interrupt cards found! Using first one."
}

func (f *ResponseFormatter) CollaboratorUnavailableNotice() string {
	return "I could not reach Trello. Interrupt queries are degraded until it recovers."
}
