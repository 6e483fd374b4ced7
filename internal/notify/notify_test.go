package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oricchiolab/scrnaseq-run/internal/domain"
)

func TestSlackMessage_Build(t *testing.T) {
	msg := SlackMessage{
		Text: "scRNA-seq pipeline finished",
		Attachments: []SlackAttachment{
			{
				Color: "good",
				Title: "run 1234",
				Text:  "Results: /data/out",
			},
		},
	}

	payload, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	if len(payload) == 0 {
		t.Error("Payload should not be empty")
	}
}

func TestSlackNotifier_Send(t *testing.T) {
	var got SlackMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL)
	err := notifier.Send(Notification{
		Title:   "Test",
		Message: "Test message",
		Type:    NotifyError,
		RunID:   "abc",
		Outdir:  "/data/out",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(got.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(got.Attachments))
	}
	att := got.Attachments[0]
	if att.Title != "run abc" {
		t.Errorf("Title = %q, want run abc", att.Title)
	}
	if att.Color != "danger" {
		t.Errorf("Color = %q, want danger", att.Color)
	}
	if len(att.Fields) != 1 || att.Fields[0].Value != "/data/out" {
		t.Errorf("Fields = %+v", att.Fields)
	}
}

func TestSlackNotifier_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if err := NewSlackNotifier(server.URL).Send(Notification{Title: "x"}); err == nil {
		t.Error("expected error on 403")
	}
}

func TestNotificationTypeColors(t *testing.T) {
	tests := []struct {
		typ  NotificationType
		want string
	}{
		{NotifySuccess, "good"},
		{NotifyWarning, "warning"},
		{NotifyError, "danger"},
		{NotifyInfo, "#439FE0"},
	}

	for _, tt := range tests {
		got := SlackColor(tt.typ)
		if got != tt.want {
			t.Errorf("SlackColor(%v) = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

func TestMultiNotifier(t *testing.T) {
	var called []string

	mock1 := &mockNotifier{name: "mock1", calls: &called}
	mock2 := &mockNotifier{name: "mock2", calls: &called}

	multi := NewMultiNotifier(mock1, mock2)
	multi.Send(Notification{Title: "Test"})

	if len(called) != 2 {
		t.Errorf("Expected 2 calls, got %d", len(called))
	}
}

func TestFromSettings(t *testing.T) {
	if _, ok := FromSettings(false, "").(NoopNotifier); !ok {
		t.Error("no channels should give NoopNotifier")
	}
	if _, ok := FromSettings(false, "https://hooks.example.com").(*MultiNotifier); !ok {
		t.Error("slack webhook should give MultiNotifier")
	}
}

func TestForRun(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	code := 137

	tests := []struct {
		name        string
		run         domain.Run
		wantType    NotificationType
		wantMessage string
	}{
		{
			name:        "succeeded",
			run:         domain.Run{ID: "r1", Version: "2.7.1", Outdir: "/out", Status: domain.RunSucceeded, StartedAt: start, FinishedAt: &end},
			wantType:    NotifySuccess,
			wantMessage: "completed in 2h0m0s",
		},
		{
			name:        "launched",
			run:         domain.Run{ID: "r2", Version: "2.7.1", Outdir: "/out", Status: domain.RunLaunched},
			wantType:    NotifyInfo,
			wantMessage: "background",
		},
		{
			name:        "failed",
			run:         domain.Run{ID: "r3", Version: "2.7.1", Outdir: "/out", Status: domain.RunFailed, ExitCode: &code},
			wantType:    NotifyError,
			wantMessage: "exited with status 137",
		},
		{
			name:        "running",
			run:         domain.Run{ID: "r4", Status: domain.RunRunning},
			wantType:    NotifyWarning,
			wantMessage: "r4 is running",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := ForRun(&tt.run)
			if n.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", n.Type, tt.wantType)
			}
			if !strings.Contains(n.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want it to contain %q", n.Message, tt.wantMessage)
			}
			if n.RunID != tt.run.ID {
				t.Errorf("RunID = %q, want %q", n.RunID, tt.run.ID)
			}
		})
	}
}

func TestEscapeAppleScript(t *testing.T) {
	if got := escapeAppleScript(`say "hi" \ bye`); got != `say \"hi\" \\ bye` {
		t.Errorf("escapeAppleScript = %q", got)
	}
}

type mockNotifier struct {
	name  string
	calls *[]string
}

func (m *mockNotifier) Send(n Notification) error {
	*m.calls = append(*m.calls, m.name)
	return nil
}
