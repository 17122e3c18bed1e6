package memory

import "fmt"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// UnmarshalText rejects unknown roles so a bad transcript fails loudly.
func (r *Role) UnmarshalText(b []byte) error {
	v := Role(b)
	if !v.Valid() {
		return fmt.Errorf("unknown role %q", string(b))
	}
	*r = v
	return nil
}

// Message is one chat turn as the UI sees it. Tool blocks are never stored here.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func NewUserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

func NewAssistantMessage(text string) Message { return Message{Role: RoleAssistant, Text: text} }

// Conversation is an append-only sequence of messages. The zero value is empty and ready to use.
// A Conversation is not safe for concurrent use; hand a Clone to other goroutines.
type Conversation struct {
	msgs []Message
}

// NewConversation builds a conversation from msgs, copying the slice.
func NewConversation(msgs ...Message) Conversation {
	c := Conversation{}
	for _, m := range msgs {
		c.Append(m)
	}
	return c
}

func (c *Conversation) Append(m Message) { c.msgs = append(c.msgs, m) }

func (c *Conversation) AppendUser(text string) { c.Append(NewUserMessage(text)) }

func (c *Conversation) AppendAssistant(text string) { c.Append(NewAssistantMessage(text)) }

func (c Conversation) Len() int { return len(c.msgs) }

// Messages returns a copy of the messages in insertion order.
func (c Conversation) Messages() []Message {
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Last returns the most recent message, if any.
func (c Conversation) Last() (Message, bool) {
	if len(c.msgs) == 0 {
		return Message{}, false
	}
	return c.msgs[len(c.msgs)-1], true
}

// Clone returns an independent copy. Appends to either side are never visible to the other.
func (c Conversation) Clone() Conversation {
	return Conversation{msgs: c.Messages()}
}
