package domain

import "time"

type CommandContext struct {
	Room      string
	Sender    string
	Message   string
	Timestamp time.Time
}

func NewCommandContext(room, sender, message string) *CommandContext {
	return &CommandContext{
		Room:      room,
		Sender:    sender,
		Message:   message,
		Timestamp: time.Now(),
	}
}
