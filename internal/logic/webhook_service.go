package logic

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/pccr10001/ofonomock/internal/model"
	"github.com/pccr10001/ofonomock/internal/ofono"
	"github.com/pccr10001/ofonomock/internal/repository"
	"github.com/pccr10001/ofonomock/pkg/logger"
)

// SignalEvent is the JSON and template view of an emitted signal.
type SignalEvent struct {
	Path      string `json:"path"`
	Interface string `json:"interface"`
	Member    string `json:"member"`
	Name      string `json:"name"`
	Body      []any  `json:"body"`
}

func NewSignalEvent(sig ofono.Signal) SignalEvent {
	body := sig.Body
	if body == nil {
		body = []any{}
	}
	return SignalEvent{
		Path:      string(sig.Path),
		Interface: sig.Interface,
		Member:    sig.Member,
		Name:      sig.Name(),
		Body:      body,
	}
}

type WebhookService struct {
	repo   *repository.WebhookRepository
	client *http.Client
}

func NewWebhookService(repo *repository.WebhookRepository) *WebhookService {
	return &WebhookService{
		repo:   repo,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Dispatch posts sig to every enabled webhook whose member filter matches.
// Deliveries run in the background; failures are only logged.
func (s *WebhookService) Dispatch(sig ofono.Signal) {
	webhooks, err := s.repo.FindByMember(sig.Member)
	if err != nil {
		logger.Log.Errorf("Failed to fetch webhooks for %s: %v", sig.Member, err)
		return
	}

	ev := NewSignalEvent(sig)
	for _, wh := range webhooks {
		go s.sendWebhook(wh, ev)
	}
}

func (s *WebhookService) sendWebhook(wh model.Webhook, ev SignalEvent) {
	payload, err := buildPayload(wh, ev)
	if err != nil {
		logger.Log.Errorf("Failed to marshal webhook payload: %v", err)
		return
	}

	req, err := http.NewRequest("POST", wh.URL, bytes.NewBuffer(payload))
	if err != nil {
		logger.Log.Errorf("Failed to create request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Log.Errorf("Failed to send webhook to %s: %v", wh.URL, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logger.Log.Errorf("Webhook %s returned status: %d", wh.URL, resp.StatusCode)
	} else {
		logger.Log.Infof("Webhook sent to %s", wh.URL)
	}
}

func buildPayload(wh model.Webhook, ev SignalEvent) ([]byte, error) {
	content := ev.Name + " on " + ev.Path
	if wh.Template != "" {
		tmpl, err := template.New("msg").Parse(wh.Template)
		if err == nil {
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, ev); err == nil {
				content = buf.String()
			}
		}
	}

	switch wh.Platform {
	case "telegram":
		body := map[string]interface{}{
			"text":       content,
			"parse_mode": "Markdown",
		}
		if wh.ChannelID != "" {
			body["chat_id"] = wh.ChannelID
		}
		return json.Marshal(body)
	case "slack":
		return json.Marshal(map[string]interface{}{"text": content})
	default:
		if strings.Contains(wh.URL, "slack.com") {
			return json.Marshal(map[string]interface{}{"text": content})
		}
		return json.Marshal(map[string]interface{}{
			"text":   content,
			"signal": ev,
		})
	}
}
