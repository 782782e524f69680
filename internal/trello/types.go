package trello

// Member is a Trello member as returned by /1/members/{idOrUsername}.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Board is a Trello board.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List is a list on a board.
type List struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IDBoard string `json:"idBoard"`
}

// Card is a card on a list. IDMembers preserves Trello's assignment order.
type Card struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	IDList    string   `json:"idList"`
	IDMembers []string `json:"idMembers"`
}
