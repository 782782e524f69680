package adapter

import (
	"testing"

	"github.com/kapu/interrupt-bot-go/internal/chat"
	"github.com/kapu/interrupt-bot-go/internal/domain"
)

func commandMsg(text string) *chat.Message {
	return &chat.Message{Room: "ops", Sender: "jon", Msg: text, Command: true}
}

func plainMsg(text string) *chat.Message {
	return &chat.Message{Room: "ops", Sender: "jon", Msg: text}
}

func TestParseMessageRoutesCommands(t *testing.T) {
	ma := NewMessageAdapter("dutybot")

	tests := []struct {
		name string
		msg  *chat.Message
		want domain.CommandType
	}{
		{"echo", commandMsg("echo hello there"), domain.CommandEcho},
		{"add self", commandMsg("add me jonsnow"), domain.CommandAdd},
		{"add other", commandMsg("add @sam samwelltarley"), domain.CommandAdd},
		{"remove self", commandMsg("remove me"), domain.CommandRemove},
		{"remove other", commandMsg("remove @sam"), domain.CommandRemove},
		{"team", commandMsg("team"), domain.CommandTeam},
		{"team padded", commandMsg("  team  "), domain.CommandTeam},
		{"part", commandMsg("part"), domain.CommandPart},
		{"fallback interrupt", commandMsg("who is on call?"), domain.CommandInterrupt},
		{"fallback near-miss add", commandMsg("add me"), domain.CommandInterrupt},
		{"mention", plainMsg("hey @dutybot the site is down"), domain.CommandInterruptMention},
		{"mention alone", plainMsg("@dutybot"), domain.CommandInterruptMention},
		{"mention with punctuation", plainMsg("@dutybot: prod is down"), domain.CommandInterruptMention},
		{"mention mid-word", plainMsg("hey@dutybot look at this"), domain.CommandInterruptMention},
		{"plain chatter", plainMsg("lunch anyone?"), domain.CommandUnknown},
		{"empty", commandMsg("   "), domain.CommandUnknown},
		{"nil", nil, domain.CommandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ma.ParseMessage(tt.msg)
			if got.Type != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got.Type)
			}
		})
	}
}

func TestParseMessageExtractsAddParams(t *testing.T) {
	ma := NewMessageAdapter("dutybot")

	parsed := ma.ParseMessage(commandMsg("add @sam samwelltarley"))
	if parsed.Type != domain.CommandAdd {
		t.Fatalf("expected add, got %s", parsed.Type)
	}
	if parsed.Params["target"] != "@sam" || parsed.Params["username"] != "samwelltarley" {
		t.Fatalf("unexpected params %v", parsed.Params)
	}
}

func TestParseMessageExtractsEchoText(t *testing.T) {
	ma := NewMessageAdapter("dutybot")

	parsed := ma.ParseMessage(commandMsg("echo back at you"))
	if parsed.Params["text"] != "back at you" {
		t.Fatalf("unexpected echo text %v", parsed.Params["text"])
	}
}

func TestParseMessageMentionBoundaries(t *testing.T) {
	ma := NewMessageAdapter("dutybot")

	// A prefix of another handle is not a mention.
	if got := ma.ParseMessage(plainMsg("ping @dutybotters please")); got.Type != domain.CommandUnknown {
		t.Fatalf("expected unknown for partial handle, got %s", got.Type)
	}

	// Trailing punctuation still counts.
	for _, text := range []string{"@dutybot!", "(@dutybot)", "@dutybot, wake up"} {
		if got := ma.ParseMessage(plainMsg(text)); got.Type != domain.CommandInterruptMention {
			t.Fatalf("expected mention for %q, got %s", text, got.Type)
		}
	}
}

func TestResolveTarget(t *testing.T) {
	if handle, isSelf := ResolveTarget("me", "jon"); handle != "jon" || !isSelf {
		t.Fatalf("expected (jon, true), got (%s, %v)", handle, isSelf)
	}
	if handle, isSelf := ResolveTarget("@sam", "jon"); handle != "sam" || isSelf {
		t.Fatalf("expected (sam, false), got (%s, %v)", handle, isSelf)
	}
}
