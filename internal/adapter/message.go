package adapter

import (
	"regexp"
	"strings"

	"github.com/kapu/interrupt-bot-go/internal/chat"
	"github.com/kapu/interrupt-bot-go/internal/domain"
)

var (
	addPattern    = regexp.MustCompile(`^\s*add\s+(me|@\S+)\s+(\S+)\s*$`)
	removePattern = regexp.MustCompile(`^\s*remove\s+(me|@\S+)\s*$`)
	teamPattern   = regexp.MustCompile(`^\s*team\s*$`)
	echoPattern   = regexp.MustCompile(`^\s*echo\s+(.+)$`)
	partPattern   = regexp.MustCompile(`^\s*part\s*$`)
)

// MessageAdapter converts gateway messages into bot command intents.
type MessageAdapter struct {
	botName        string
	mentionPattern *regexp.Regexp
}

func NewMessageAdapter(botName string) *MessageAdapter {
	// The name may appear anywhere in the message and may be followed by
	// punctuation; only a longer handle sharing the prefix must not match.
	return &MessageAdapter{
		botName:        botName,
		mentionPattern: regexp.MustCompile(`@` + regexp.QuoteMeta(botName) + `\b`),
	}
}

// ParsedCommand represents a parsed command
type ParsedCommand struct {
	Type       domain.CommandType
	Params     map[string]any
	RawMessage string
}

// ParseMessage routes an inbound message. Messages addressed to the bot match
// the fixed command set; any other non-empty addressed message falls through
// to the interrupt query, exclusively, matching the original bot's routes. A
// message that merely mentions the bot by name also triggers the interrupt
// query, non-exclusively.
func (ma *MessageAdapter) ParseMessage(message *chat.Message) *ParsedCommand {
	if message == nil || strings.TrimSpace(message.Msg) == "" {
		return ma.unknown("")
	}

	text := message.Msg

	if !message.Command {
		if ma.mentionPattern.MatchString(text) {
			return &ParsedCommand{
				Type:       domain.CommandInterruptMention,
				Params:     make(map[string]any),
				RawMessage: text,
			}
		}
		return ma.unknown(text)
	}

	if m := echoPattern.FindStringSubmatch(text); m != nil {
		return &ParsedCommand{
			Type:       domain.CommandEcho,
			Params:     map[string]any{"text": m[1]},
			RawMessage: text,
		}
	}

	if m := addPattern.FindStringSubmatch(text); m != nil {
		return &ParsedCommand{
			Type: domain.CommandAdd,
			Params: map[string]any{
				"target":   m[1],
				"username": m[2],
			},
			RawMessage: text,
		}
	}

	if m := removePattern.FindStringSubmatch(text); m != nil {
		return &ParsedCommand{
			Type:       domain.CommandRemove,
			Params:     map[string]any{"target": m[1]},
			RawMessage: text,
		}
	}

	if teamPattern.MatchString(text) {
		return &ParsedCommand{
			Type:       domain.CommandTeam,
			Params:     make(map[string]any),
			RawMessage: text,
		}
	}

	if partPattern.MatchString(text) {
		return &ParsedCommand{
			Type:       domain.CommandPart,
			Params:     make(map[string]any),
			RawMessage: text,
		}
	}

	// The exclusive catch-all: any other message addressed to the bot asks
	// who is on interrupt duty.
	return &ParsedCommand{
		Type:       domain.CommandInterrupt,
		Params:     make(map[string]any),
		RawMessage: text,
	}
}

// ResolveTarget maps an add/remove target token to a chat handle: "me" is the
// sender, anything else is an explicit @handle.
func ResolveTarget(target, sender string) (handle string, isSelf bool) {
	if target == "me" {
		return sender, true
	}
	return strings.TrimPrefix(target, "@"), false
}

func (ma *MessageAdapter) unknown(text string) *ParsedCommand {
	return &ParsedCommand{
		Type:       domain.CommandUnknown,
		Params:     make(map[string]any),
		RawMessage: text,
	}
}
