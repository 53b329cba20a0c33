package telegram

import (
	"path/filepath"
	"strings"
)

// Update is the subset of the Bot API update payload the relay consumes.
type Update struct {
	UpdateID    int64    `json:"update_id"`
	Message     *Message `json:"message"`
	ChannelPost *Message `json:"channel_post"`
}

// Payload returns the message carried by the update. Channel posts win over
// direct messages when both are present. Nil when the update carries neither.
func (u *Update) Payload() *Message {
	if u.ChannelPost != nil {
		return u.ChannelPost
	}
	return u.Message
}

// Message is an incoming chat or channel message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
	Caption   string `json:"caption"`
	Chat      Chat   `json:"chat"`
	Audio     *Audio `json:"audio"`
}

// MessageText returns the text worth mining for track mentions: the caption
// when present, then the plain text, then a description of an attached audio
// file. Empty when the message carries none of those.
func (m *Message) MessageText() string {
	if m.Caption != "" {
		return m.Caption
	}
	if m.Text != "" {
		return m.Text
	}
	if m.Audio != nil {
		return m.Audio.describe()
	}
	return ""
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Username string `json:"username"`
}

// Audio describes an audio attachment.
type Audio struct {
	FileID    string `json:"file_id"`
	Duration  int    `json:"duration"`
	Performer string `json:"performer"`
	Title     string `json:"title"`
	FileName  string `json:"file_name"`
}

// describe renders the attachment as "performer - title" when tags are
// present, falling back to the file name with its extension stripped and
// underscores turned into spaces.
func (a *Audio) describe() string {
	switch {
	case a.Performer != "" && a.Title != "":
		return a.Performer + " - " + a.Title
	case a.Title != "":
		return a.Title
	case a.FileName != "":
		name := strings.TrimSuffix(a.FileName, filepath.Ext(a.FileName))
		return strings.ReplaceAll(name, "_", " ")
	default:
		return ""
	}
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type editCaptionRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Caption   string `json:"caption"`
}

type apiResponse struct {
	OK          bool                `json:"ok"`
	Description string              `json:"description"`
	ErrorCode   int                 `json:"error_code"`
	Parameters  *responseParameters `json:"parameters"`
}

type responseParameters struct {
	RetryAfter int `json:"retry_after"`
}
