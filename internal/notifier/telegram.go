package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"ivagate/internal/access"
	"ivagate/internal/mood"
)

const telegramAPI = "https://api.telegram.org"

type TelegramConfig struct {
	BotToken string   `koanf:"bot_token"`
	ChatIDs  []string `koanf:"chat_ids"`
	APIURL   string   `koanf:"api_url"`
}

type Telegram struct {
	botToken string
	chatIDs  []string
	apiURL   string
	client   *http.Client
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = telegramAPI
	}
	return &Telegram{
		botToken: cfg.BotToken,
		chatIDs:  cfg.ChatIDs,
		apiURL:   apiURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Telegram) Notify(ctx context.Context, n Notification) error {
	text := formatMessage(n)

	for _, chatID := range t.chatIDs {
		if err := t.send(ctx, chatID, text); err != nil {
			return err
		}
	}

	return nil
}

func (t *Telegram) send(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.botToken)

	body, _ := json.Marshal(map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %d", resp.StatusCode)
	}

	return nil
}

func formatMessage(n Notification) string {
	icon := "💬"
	switch n.Exchange.Tier {
	case access.TierNone:
		icon = "🚫"
	case access.TierLimited:
		icon = "🪙"
	}

	author := n.Message.Author
	if author == "" {
		author = n.Message.SessionID
	}
	_, reply, _ := mood.SplitTag(n.Exchange.Reply)

	return fmt.Sprintf(`%s <b>Iva</b> (%s, %s)

<b>From:</b> %s
<b>Balance:</b> %.2f

<b>Message:</b>
%s

<b>Reply:</b>
%s`,
		icon,
		n.Exchange.Tier,
		n.Exchange.Mood,
		html.EscapeString(author),
		n.Exchange.Balance,
		html.EscapeString(n.Message.Text),
		html.EscapeString(reply),
	)
}
