package wa

// Inbound message shapes as delivered by the WhatsApp Cloud API webhook. Only
// the fields the pipeline branches on are mapped.

const (
	MessageTypeText        = "text"
	MessageTypeDocument    = "document"
	MessageTypeInteractive = "interactive"
	MessageTypeButton      = "button"
)

type Message struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Document    *Document    `json:"document,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
	Button      *Button      `json:"button,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

type Document struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename,omitempty"`
}

type Interactive struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
}

type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Button struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

// TextBody returns the text body for a plain text message.
func (m *Message) TextBody() (string, bool) {
	if m.Type == MessageTypeText && m.Text != nil && m.Text.Body != "" {
		return m.Text.Body, true
	}
	return "", false
}

// ReplyID returns the structured-reply id regardless of whether it arrived as
// an interactive button_reply or a template quick-reply button.
func (m *Message) ReplyID() (string, bool) {
	if m.Type == MessageTypeInteractive && m.Interactive != nil &&
		m.Interactive.ButtonReply != nil && m.Interactive.ButtonReply.ID != "" {
		return m.Interactive.ButtonReply.ID, true
	}
	if m.Type == MessageTypeButton && m.Button != nil && m.Button.Payload != "" {
		return m.Button.Payload, true
	}
	return "", false
}

type WebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []Message `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// FirstMessage unwraps the deeply nested webhook envelope.
func (p *WebhookPayload) FirstMessage() *Message {
	for _, e := range p.Entry {
		for _, ch := range e.Changes {
			if len(ch.Value.Messages) > 0 {
				return &ch.Value.Messages[0]
			}
		}
	}
	return nil
}
