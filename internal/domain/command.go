package domain

type CommandType string

const (
	CommandEcho             CommandType = "echo"
	CommandInterrupt        CommandType = "interrupt"
	CommandInterruptMention CommandType = "interrupt_mention"
	CommandTeam             CommandType = "team"
	CommandAdd              CommandType = "add"
	CommandRemove           CommandType = "remove"
	CommandPart             CommandType = "part"
	CommandUnknown          CommandType = "unknown"
)

func (c CommandType) String() string {
	return string(c)
}

func (c CommandType) IsValid() bool {
	switch c {
	case CommandEcho, CommandInterrupt, CommandInterruptMention, CommandTeam,
		CommandAdd, CommandRemove, CommandPart, CommandUnknown:
		return true
	default:
		return false
	}
}
