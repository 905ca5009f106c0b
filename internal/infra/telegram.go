package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramClient wraps the Telegram Bot API. Send satisfies the engine's
// Notifier; a circuit breaker drops messages fast when the API is down
// instead of letting fire-and-forget goroutines pile up.
type TelegramClient struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
	breaker *CircuitBreaker
}

// NewTelegramClient creates a client for one bot token and chat.
func NewTelegramClient(token, chatID string) *TelegramClient {
	return &TelegramClient{
		token:   token,
		chatID:  chatID,
		apiBase: telegramAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: NewCircuitBreaker("telegram", 0, 0, 0),
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts one message to the configured chat. Failure is returned to the
// caller for logging; nothing here retries.
func (c *TelegramClient) Send(ctx context.Context, text string) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("telegram circuit open, message dropped")
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return err
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || !parsed.OK {
		c.breaker.RecordFailure()
		if err != nil {
			return fmt.Errorf("telegram response decode: %w", err)
		}
		return fmt.Errorf("telegram sendMessage failed: %s", parsed.Description)
	}

	c.breaker.RecordSuccess()
	return nil
}

// CommandHandler produces the reply text for one inbound bot command.
type CommandHandler func(ctx context.Context, command string) string

type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type getUpdatesResponse struct {
	OK     bool             `json:"ok"`
	Result []telegramUpdate `json:"result"`
}

// TelegramPoller long-polls getUpdates and routes slash commands from the
// configured chat to the handler. It is a thin request/response wrapper: all
// state lives behind the handler.
type TelegramPoller struct {
	client     *TelegramClient
	handler    CommandHandler
	timeoutSec int
	offset     int64
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewTelegramPoller creates a poller using the client's credentials.
// timeoutSec sets the getUpdates long-poll window.
func NewTelegramPoller(client *TelegramClient, timeoutSec int, handler CommandHandler) *TelegramPoller {
	if timeoutSec <= 0 {
		timeoutSec = 25
	}
	return &TelegramPoller{client: client, handler: handler, timeoutSec: timeoutSec}
}

// Start launches the polling loop.
func (p *TelegramPoller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.runLoop(ctx)
}

// Stop terminates the poller.
func (p *TelegramPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *TelegramPoller) runLoop(ctx context.Context) {
	defer p.wg.Done()
	slog.Info("Telegram command poller started")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := p.fetchUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("getUpdates failed", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			p.offset = u.UpdateID + 1
			p.dispatch(ctx, u)
		}
	}
}

func (p *TelegramPoller) fetchUpdates(ctx context.Context) ([]telegramUpdate, error) {
	url := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=%d", p.client.apiBase, p.client.token, p.offset, p.timeoutSec)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// Long-poll: the request itself blocks up to the timeout parameter.
	client := &http.Client{Timeout: time.Duration(p.timeoutSec+10) * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed getUpdatesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	if !parsed.OK {
		return nil, fmt.Errorf("getUpdates returned ok=false")
	}
	return parsed.Result, nil
}

func (p *TelegramPoller) dispatch(ctx context.Context, u telegramUpdate) {
	text := u.Message.Text
	if len(text) == 0 || text[0] != '/' {
		return
	}
	// Only the configured chat may command the bot.
	if strconv.FormatInt(u.Message.Chat.ID, 10) != p.client.chatID {
		return
	}

	reply := p.handler(ctx, text)
	if reply == "" {
		return
	}
	if err := p.client.Send(ctx, reply); err != nil {
		slog.Warn("Command reply failed", slog.Any("error", err))
	}
}
