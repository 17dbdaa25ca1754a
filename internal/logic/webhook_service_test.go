package logic

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/pccr10001/ofonomock/internal/model"
	"github.com/pccr10001/ofonomock/internal/ofono"
	"github.com/pccr10001/ofonomock/internal/repository"
)

var callAdded = ofono.Signal{
	Path:      "/ril_0",
	Interface: ofono.VoiceCallManagerInterface,
	Member:    "CallAdded",
	Signature: "oa{sv}",
	Body:      []any{dbus.ObjectPath("/ril_0/voicecall01"), ofono.Properties{"State": "dialing"}},
}

func TestBuildPayload(t *testing.T) {
	ev := NewSignalEvent(callAdded)

	tests := []struct {
		name string
		wh   model.Webhook
		want map[string]any
	}{
		{
			name: "telegram",
			wh:   model.Webhook{Platform: "telegram", ChannelID: "42", Template: "{{.Member}} at {{.Path}}"},
			want: map[string]any{"text": "CallAdded at /ril_0", "parse_mode": "Markdown", "chat_id": "42"},
		},
		{
			name: "slack",
			wh:   model.Webhook{Platform: "slack"},
			want: map[string]any{"text": "org.ofono.VoiceCallManager.CallAdded on /ril_0"},
		},
		{
			name: "bad template falls back",
			wh:   model.Webhook{Platform: "slack", Template: "{{.Nope"},
			want: map[string]any{"text": "org.ofono.VoiceCallManager.CallAdded on /ril_0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := buildPayload(tt.wh, ev)
			if err != nil {
				t.Fatalf("failed to build payload: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected payload (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDispatch(t *testing.T) {
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received <- b
	}))
	defer srv.Close()

	db, err := repository.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	repo := repository.NewWebhookRepository(db)
	for _, wh := range []model.Webhook{
		{URL: srv.URL, Member: "CallAdded"},
		{URL: srv.URL, Member: "CallRemoved"},
	} {
		wh := wh
		if err := repo.Create(&wh); err != nil {
			t.Fatalf("failed to create webhook: %v", err)
		}
	}

	NewWebhookService(repo).Dispatch(callAdded)

	select {
	case b := <-received:
		var got struct {
			Text   string      `json:"text"`
			Signal SignalEvent `json:"signal"`
		}
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if got.Signal.Member != "CallAdded" || got.Signal.Path != "/ril_0" {
			t.Fatalf("unexpected signal %+v", got.Signal)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not delivered")
	}

	select {
	case b := <-received:
		t.Fatalf("unexpected second delivery: %s", b)
	case <-time.After(100 * time.Millisecond):
	}
}
