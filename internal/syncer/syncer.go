// Package syncer keeps the terminal client's local copies of the
// conversation and program rows in step with the server, last write wins.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron"

	"coach-backend/internal/localstore"
	"coach-backend/internal/models"
)

// PollSpec is the cron schedule of the background pull.
const PollSpec = "@every 15s"

// ShouldApplyRemote reports whether a remote row replaces the local copy.
// Only a strictly newer remote stamp wins; a zero local stamp loses to any
// non-zero remote one.
func ShouldApplyRemote(local, remote time.Time) bool {
	if remote.IsZero() {
		return false
	}
	return remote.After(local)
}

type Syncer struct {
	store  localstore.Store
	remote Remote
	now    func() time.Time

	warnOnce sync.Once
}

// New returns a syncer over store. A nil remote runs in local-only mode.
func New(store localstore.Store, remote Remote) *Syncer {
	return &Syncer{
		store:  store,
		remote: remote,
		now:    time.Now,
	}
}

// LocalOnly reports whether pushes and pulls are skipped.
func (s *Syncer) LocalOnly() bool {
	return s.remote == nil
}

func (s *Syncer) online() bool {
	if s.remote != nil {
		return true
	}
	s.warnOnce.Do(func() {
		log.Println("⚠ Sync disabled: server URL or token not configured, working locally only")
	})
	return false
}

func (s *Syncer) LocalConversation(ctx context.Context) (models.Conversation, error) {
	conv := models.Conversation{Messages: []models.ChatMessage{}, PendingSessions: []models.SessionDraft{}}
	if _, err := localstore.LoadJSON(ctx, s.store, localstore.KeyMessages, &conv.Messages); err != nil {
		return conv, err
	}
	if _, err := localstore.LoadJSON(ctx, s.store, localstore.KeyPendingSessions, &conv.PendingSessions); err != nil {
		return conv, err
	}
	if _, err := localstore.LoadJSON(ctx, s.store, localstore.KeyOnboardingDone, &conv.OnboardingDone); err != nil {
		return conv, err
	}
	stamp, err := localstore.LoadStamp(ctx, s.store, localstore.KeyMessagesUpdatedAt)
	if err != nil {
		return conv, err
	}
	conv.UpdatedAt = stamp
	return conv, nil
}

func (s *Syncer) LocalProgram(ctx context.Context) (models.Program, error) {
	prog := models.Program{Sessions: []models.ProgramSession{}}
	if _, err := localstore.LoadJSON(ctx, s.store, localstore.KeyProgramSessions, &prog.Sessions); err != nil {
		return prog, err
	}
	stamp, err := localstore.LoadStamp(ctx, s.store, localstore.KeyProgramUpdatedAt)
	if err != nil {
		return prog, err
	}
	prog.UpdatedAt = stamp
	return prog, nil
}

func (s *Syncer) saveConversation(ctx context.Context, conv models.Conversation) error {
	if err := localstore.SaveJSON(ctx, s.store, localstore.KeyMessages, conv.Messages); err != nil {
		return err
	}
	if err := localstore.SaveJSON(ctx, s.store, localstore.KeyPendingSessions, conv.PendingSessions); err != nil {
		return err
	}
	if err := localstore.SaveJSON(ctx, s.store, localstore.KeyOnboardingDone, conv.OnboardingDone); err != nil {
		return err
	}
	return localstore.SaveStamp(ctx, s.store, localstore.KeyMessagesUpdatedAt, conv.UpdatedAt)
}

func (s *Syncer) saveProgram(ctx context.Context, prog models.Program) error {
	if err := localstore.SaveJSON(ctx, s.store, localstore.KeyProgramSessions, prog.Sessions); err != nil {
		return err
	}
	return localstore.SaveStamp(ctx, s.store, localstore.KeyProgramUpdatedAt, prog.UpdatedAt)
}

// PushConversation stamps conv, stores it locally and sends it to the server.
// Only local storage failures are returned; the local copy stays
// authoritative when the push fails.
func (s *Syncer) PushConversation(ctx context.Context, conv models.Conversation) (models.Conversation, error) {
	conv.UpdatedAt = models.Stamp(s.now())
	if err := s.saveConversation(ctx, conv); err != nil {
		return conv, fmt.Errorf("save conversation: %w", err)
	}
	if s.online() {
		if err := s.remote.PutConversation(ctx, conv); err != nil {
			log.Printf("conversation push skipped: %v", err)
		}
	}
	return conv, nil
}

// PushProgram is PushConversation for the program row.
func (s *Syncer) PushProgram(ctx context.Context, sessions []models.ProgramSession) (models.Program, error) {
	prog := models.Program{Sessions: sessions, UpdatedAt: models.Stamp(s.now())}
	if prog.Sessions == nil {
		prog.Sessions = []models.ProgramSession{}
	}
	if err := s.saveProgram(ctx, prog); err != nil {
		return prog, fmt.Errorf("save program: %w", err)
	}
	if s.online() {
		if err := s.remote.PutProgram(ctx, prog); err != nil {
			log.Printf("program push skipped: %v", err)
		}
	}
	return prog, nil
}

// PullResult says which local rows were replaced by a pull.
type PullResult struct {
	Conversation bool
	Program      bool
}

// Pull fetches both rows and overwrites each local copy the server holds a
// newer version of. Remote failures are logged and leave local state alone.
func (s *Syncer) Pull(ctx context.Context) (PullResult, error) {
	var res PullResult
	if !s.online() {
		return res, nil
	}

	remoteConv, err := s.remote.GetConversation(ctx)
	switch {
	case errors.Is(err, ErrNoRow):
	case err != nil:
		log.Printf("conversation pull skipped: %v", err)
	default:
		local, err := localstore.LoadStamp(ctx, s.store, localstore.KeyMessagesUpdatedAt)
		if err != nil {
			return res, err
		}
		if ShouldApplyRemote(local, remoteConv.UpdatedAt) {
			if err := s.saveConversation(ctx, normalizeConversation(remoteConv)); err != nil {
				return res, fmt.Errorf("apply remote conversation: %w", err)
			}
			res.Conversation = true
		}
	}

	remoteProg, err := s.remote.GetProgram(ctx)
	switch {
	case errors.Is(err, ErrNoRow):
	case err != nil:
		log.Printf("program pull skipped: %v", err)
	default:
		local, err := localstore.LoadStamp(ctx, s.store, localstore.KeyProgramUpdatedAt)
		if err != nil {
			return res, err
		}
		if ShouldApplyRemote(local, remoteProg.UpdatedAt) {
			if remoteProg.Sessions == nil {
				remoteProg.Sessions = []models.ProgramSession{}
			}
			if err := s.saveProgram(ctx, remoteProg); err != nil {
				return res, fmt.Errorf("apply remote program: %w", err)
			}
			res.Program = true
		}
	}

	return res, nil
}

// Run pulls on PollSpec until ctx is cancelled. onPull, when set, is called
// after every pull that replaced something.
func (s *Syncer) Run(ctx context.Context, onPull func(PullResult)) error {
	if !s.online() {
		<-ctx.Done()
		return nil
	}

	var mu sync.Mutex
	c := cron.New()
	err := c.AddFunc(PollSpec, func() {
		mu.Lock()
		defer mu.Unlock()
		res, err := s.Pull(ctx)
		if err != nil {
			log.Printf("sync pull failed: %v", err)
			return
		}
		if onPull != nil && (res.Conversation || res.Program) {
			onPull(res)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule pull: %w", err)
	}

	c.Start()
	<-ctx.Done()
	c.Stop()
	return nil
}

func normalizeConversation(conv models.Conversation) models.Conversation {
	if conv.Messages == nil {
		conv.Messages = []models.ChatMessage{}
	}
	if conv.PendingSessions == nil {
		conv.PendingSessions = []models.SessionDraft{}
	}
	return conv
}
