package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coach-backend/internal/localstore"
	"coach-backend/internal/models"
)

const sessionReply = `Voici ta séance du jour !

Séance : Footing sous la pluie (30 min)
## Échauffement
- 5 min de marche rapide
## Course à pied
- 20 min en endurance fondamentale
## Conseils
- Prends une veste imperméable

Bonne séance !`

func newTestApp(t *testing.T) (*app, appLoader) {
	t.Helper()
	a, err := newApp(cliConfig{Width: 60}, localstore.NewMemoryStore(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return a, func(string) (*app, error) { return a, nil }
}

func run(t *testing.T, load appLoader, stdin string, args ...string) (string, error) {
	t.Helper()
	root := buildRootCmd(load)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedPending(t *testing.T, a *app) []models.SessionDraft {
	t.Helper()
	drafts := a.extract(sessionReply)
	conv := models.Conversation{
		Messages:        []models.ChatMessage{{Role: models.RoleAssistant, Content: sessionReply}},
		PendingSessions: drafts,
	}
	if _, err := a.sync.PushConversation(context.Background(), conv); err != nil {
		t.Fatal(err)
	}
	return drafts
}

func TestExtractCmd(t *testing.T) {
	_, load := newTestApp(t)

	out, err := run(t, load, sessionReply, "extract")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Footing sous la pluie (30 min)") {
		t.Errorf("Expected the draft title, got %q", out)
	}

	out, err = run(t, load, "Salut, comment vas-tu ?", "extract")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no sessions") {
		t.Errorf("Expected no sessions, got %q", out)
	}
}

func TestRenderCmd_LatestMessage(t *testing.T) {
	a, load := newTestApp(t)

	if _, err := run(t, load, "", "render"); err == nil {
		t.Error("Expected an error without any coach message")
	}

	seedPending(t, a)
	out, err := run(t, load, "", "render")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[1] à ajouter") {
		t.Errorf("Expected the pending card to be committable, got:\n%s", out)
	}
}

func TestProgramFlow(t *testing.T) {
	a, load := newTestApp(t)
	drafts := seedPending(t, a)
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	defer func() { timeNow = time.Now }()

	out, err := run(t, load, "", "program", "commit")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1 session(s) added") {
		t.Errorf("Unexpected commit output %q", out)
	}

	conv, _ := a.sync.LocalConversation(context.Background())
	if len(conv.PendingSessions) != 0 {
		t.Errorf("Expected pending list to be emptied, got %d", len(conv.PendingSessions))
	}

	if _, err := run(t, load, "", "program", "done", shortID(drafts[0].ID), "--feedback", "trop_dur"); err != nil {
		t.Fatal(err)
	}
	p, _ := a.program(context.Background())
	if len(p.Sessions) != 1 || !p.Sessions[0].Done || p.Sessions[0].Feedback != models.FeedbackTooHard {
		t.Fatalf("Unexpected program %+v", p.Sessions)
	}
	if p.Sessions[0].CompletedAt == nil || !p.Sessions[0].CompletedAt.Equal(now) {
		t.Errorf("Expected completion time %v, got %v", now, p.Sessions[0].CompletedAt)
	}

	out, err = run(t, load, "", "program", "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1/1 séances (100%)") || !strings.Contains(out, "30 min") {
		t.Errorf("Unexpected stats:\n%s", out)
	}

	if _, err := run(t, load, "", "program", "done", "nope"); err == nil {
		t.Error("Expected an error for an unknown session")
	}
	if _, err := run(t, load, "", "program", "done", drafts[0].ID, "--feedback", "meh"); err == nil {
		t.Error("Expected an error for invalid feedback")
	}

	if _, err := run(t, load, "", "program", "reset", drafts[0].ID); err != nil {
		t.Fatal(err)
	}
	p, _ = a.program(context.Background())
	if p.Sessions[0].Done || p.Sessions[0].Feedback != "" || p.Sessions[0].CompletedAt != nil {
		t.Errorf("Expected reset session, got %+v", p.Sessions[0])
	}

	path := filepath.Join(t.TempDir(), "programme.xlsx")
	if _, err := run(t, load, "", "program", "export", path); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("Expected a workbook at %s: %v", path, err)
	}

	if _, err := run(t, load, "", "program", "delete", drafts[0].ID); err != nil {
		t.Fatal(err)
	}
	p, _ = a.program(context.Background())
	if len(p.Sessions) != 0 {
		t.Errorf("Expected empty program, got %d", len(p.Sessions))
	}
}

func TestChatCmd_LocalOnly(t *testing.T) {
	_, load := newTestApp(t)
	if _, err := run(t, load, "", "chat", "Salut"); err == nil {
		t.Error("Expected chat to require a server")
	}
	out, err := run(t, load, "", "sync")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "local-only") {
		t.Errorf("Unexpected sync output %q", out)
	}
}

func TestCatalogCmd(t *testing.T) {
	_, load := newTestApp(t)
	out, err := run(t, load, "", "catalog", "suggest", "footing", "sous", "la", "pluie")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "no suggestions") {
		t.Errorf("Expected suggestions, got %q", out)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coachctl.yaml")
	os.WriteFile(path, []byte("server_url: http://localhost:8080\ntoken: abc\nsex: Femme\n"), 0o600)
	t.Setenv("COACHCTL_TOKEN", "from-env")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerURL != "http://localhost:8080" || cfg.Sex != "Femme" {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.Token != "from-env" {
		t.Errorf("Expected env to override the file, got %q", cfg.Token)
	}
	if cfg.Width != 72 || cfg.DBPath == "" {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}
