package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"coach-backend/internal/catalog"
	"coach-backend/internal/localstore"
	"coach-backend/internal/models"
	"coach-backend/internal/parser"
	"coach-backend/internal/program"
	"coach-backend/internal/services"
	"coach-backend/internal/syncer"
)

var timeNow = time.Now

// app is the terminal client: local copies in a key/value store, synced with
// the server when one is configured.
type app struct {
	cfg     cliConfig
	store   localstore.Store
	sync    *syncer.Syncer
	remote  *syncer.HTTPRemote
	catalog *catalog.Catalog
	closeFn func() error
}

func loadApp(configFile string) (*app, error) {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	store, err := localstore.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var remote *syncer.HTTPRemote
	if cfg.ServerURL != "" && cfg.Token != "" {
		remote = syncer.NewHTTPRemote(cfg.ServerURL, cfg.Token)
	}
	a, err := newApp(cfg, store, remote)
	if err != nil {
		store.Close()
		return nil, err
	}
	a.closeFn = store.Close
	return a, nil
}

func newApp(cfg cliConfig, store localstore.Store, remote *syncer.HTTPRemote) (*app, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, store: store, remote: remote, catalog: cat}
	// a nil *HTTPRemote must not reach the Remote interface
	if remote != nil {
		a.sync = syncer.New(store, remote)
	} else {
		a.sync = syncer.New(store, nil)
	}
	return a, nil
}

func (a *app) Close() error {
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

func (a *app) sex() catalog.Sex {
	return catalog.NormalizeSex(a.cfg.Sex)
}

// refresh pulls the server rows once, the way a client refreshes on focus.
func (a *app) refresh(ctx context.Context) {
	if a.sync.LocalOnly() {
		return
	}
	if _, err := a.sync.Pull(ctx); err != nil {
		log.Printf("⚠ Pull failed, showing local data: %v", err)
	}
}

func (a *app) extract(text string) []models.SessionDraft {
	return parser.ExtractSessions(text, parser.Options{Suggest: a.catalog.Suggester(a.sex())})
}

func (a *app) render(text string, pending []models.SessionDraft) services.RenderedMessage {
	return services.RenderMessage(text, pending, a.sex(), a.catalog)
}

// chat runs a coach turn on the server and returns the reply.
func (a *app) chat(ctx context.Context, message string) (*models.CoachReply, error) {
	if a.remote == nil {
		return nil, fmt.Errorf("chat needs server_url and token in the config")
	}
	var reply models.CoachReply
	if err := a.remote.Do(ctx, "POST", "/api/v1/coach/messages", models.CoachMessageRequest{Message: message}, &reply); err != nil {
		return nil, err
	}
	a.refresh(ctx)
	return &reply, nil
}

func (a *app) program(ctx context.Context) (models.Program, error) {
	return a.sync.LocalProgram(ctx)
}

func (a *app) mutateProgram(ctx context.Context, op func([]models.ProgramSession) ([]models.ProgramSession, error)) (models.Program, error) {
	prog, err := a.sync.LocalProgram(ctx)
	if err != nil {
		return models.Program{}, err
	}
	sessions, err := op(prog.Sessions)
	if err != nil {
		return models.Program{}, err
	}
	return a.sync.PushProgram(ctx, sessions)
}

// commit moves pending drafts into the program: all of them, or the one whose
// id starts with draftID.
func (a *app) commit(ctx context.Context, draftID string) (int, error) {
	conv, err := a.sync.LocalConversation(ctx)
	if err != nil {
		return 0, err
	}

	var drafts []models.SessionDraft
	remaining := []models.SessionDraft{}
	for _, d := range conv.PendingSessions {
		if draftID == "" || strings.HasPrefix(d.ID, draftID) {
			drafts = append(drafts, d)
		} else {
			remaining = append(remaining, d)
		}
	}
	if len(drafts) == 0 {
		return 0, fmt.Errorf("no pending session matches %q", draftID)
	}

	if _, err := a.mutateProgram(ctx, func(sessions []models.ProgramSession) ([]models.ProgramSession, error) {
		return program.CommitAll(sessions, drafts), nil
	}); err != nil {
		return 0, err
	}

	conv.PendingSessions = remaining
	if _, err := a.sync.PushConversation(ctx, conv); err != nil {
		return 0, err
	}
	return len(drafts), nil
}

func (a *app) markDone(ctx context.Context, id, feedback string) (models.Program, error) {
	fb, ok := models.ParseFeedback(feedback)
	if !ok {
		return models.Program{}, program.ErrInvalidFeedback
	}
	return a.mutateProgram(ctx, func(sessions []models.ProgramSession) ([]models.ProgramSession, error) {
		return program.MarkDone(sessions, a.resolveID(sessions, id), fb, timeNow())
	})
}

func (a *app) reset(ctx context.Context, id string) (models.Program, error) {
	return a.mutateProgram(ctx, func(sessions []models.ProgramSession) ([]models.ProgramSession, error) {
		return program.Reset(sessions, a.resolveID(sessions, id))
	})
}

func (a *app) delete(ctx context.Context, id string) (models.Program, error) {
	return a.mutateProgram(ctx, func(sessions []models.ProgramSession) ([]models.ProgramSession, error) {
		return program.Delete(sessions, a.resolveID(sessions, id))
	})
}

// resolveID expands a unique id prefix, as printed by "program list".
func (a *app) resolveID(sessions []models.ProgramSession, prefix string) string {
	match := ""
	for _, s := range sessions {
		if s.ID == prefix {
			return prefix
		}
		if strings.HasPrefix(s.ID, prefix) {
			if match != "" {
				return prefix
			}
			match = s.ID
		}
	}
	if match == "" {
		return prefix
	}
	return match
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}
