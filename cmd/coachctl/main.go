package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"coach-backend/internal/export"
	"coach-backend/internal/models"
	"coach-backend/internal/program"
	"coach-backend/internal/syncer"
	"coach-backend/internal/termview"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type appLoader func(configFile string) (*app, error)

func newRootCmd() *cobra.Command {
	return buildRootCmd(loadApp)
}

func buildRootCmd(load appLoader) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "coachctl",
		Short:         "Terminal client for the running coach",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.coachctl.yaml)")

	// withApp opens the local store, refreshes from the server and runs fn.
	withApp := func(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := load(configFile)
			if err != nil {
				return err
			}
			defer a.Close()
			a.refresh(cmd.Context())
			return fn(cmd, args, a)
		}
	}

	root.AddCommand(newExtractCmd(withApp))
	root.AddCommand(newRenderCmd(withApp))
	root.AddCommand(newCatalogCmd(withApp))
	root.AddCommand(newChatCmd(withApp))
	root.AddCommand(newProgramCmd(withApp))
	root.AddCommand(newSyncCmd(withApp))
	return root
}

type runner func(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error

func newExtractCmd(withApp runner) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract session drafts from a coach reply",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			drafts := a.extract(text)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(drafts)
			}
			if len(drafts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, d := range drafts {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d sections\t%s\n", shortID(d.ID), d.Title, len(d.Sections), strings.Join(d.Products, ","))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print drafts as JSON")
	return cmd
}

func newRenderCmd(withApp runner) *cobra.Command {
	return &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a coach message as session cards",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			var text string
			var err error
			conv, convErr := a.sync.LocalConversation(cmd.Context())
			if convErr != nil {
				return convErr
			}
			if len(args) == 0 {
				// latest assistant message of the local conversation
				for i := len(conv.Messages) - 1; i >= 0; i-- {
					if conv.Messages[i].Role == models.RoleAssistant {
						text = conv.Messages[i].Content
						break
					}
				}
				if text == "" {
					return fmt.Errorf("no coach message yet")
				}
			} else if text, err = readInput(args, cmd.InOrStdin()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), termview.Message(a.render(text, conv.PendingSessions), a.cfg.Width))
			return nil
		}),
	}
}

func newCatalogCmd(withApp runner) *cobra.Command {
	cat := &cobra.Command{Use: "catalog", Short: "Product catalog"}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), termview.Products(a.catalog.List(category)))
			return nil
		}),
	}
	list.Flags().StringVar(&category, "category", "", "category label or key")

	suggest := &cobra.Command{
		Use:   "suggest <text>",
		Short: "Suggest products for a session text",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ids := a.catalog.Suggest(strings.Join(args, " "), a.sex())
			if len(ids) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no suggestions")
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), termview.Products(a.catalog.Lookup(ids)))
			return nil
		}),
	}

	cat.AddCommand(list, suggest)
	return cat
}

func newChatCmd(withApp runner) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message to the coach",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			reply, err := a.chat(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if reply.Stale {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(réponse ignorée : une autre discussion a avancé entre-temps)")
				return nil
			}
			view := a.render(reply.Message.Content, reply.PendingSessions)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), termview.Message(view, a.cfg.Width))
			return nil
		}),
	}
}

func newProgramCmd(withApp runner) *cobra.Command {
	prog := &cobra.Command{Use: "program", Short: "Training program"}

	prog.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List program sessions",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := a.program(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), termview.Program(p.Sessions))
			return nil
		}),
	})

	prog.AddCommand(&cobra.Command{
		Use:   "commit [draft-id]",
		Short: "Add pending sessions to the program",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			n, err := a.commit(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d session(s) added\n", n)
			return nil
		}),
	})

	var feedback string
	done := &cobra.Command{
		Use:   "done <session-id>",
		Short: "Mark a session done",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if _, err := a.markDone(cmd.Context(), args[0], feedback); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session marked done")
			return nil
		}),
	}
	done.Flags().StringVar(&feedback, "feedback", "ok", "easy|ok|hard|too_hard")
	prog.AddCommand(done)

	prog.AddCommand(&cobra.Command{
		Use:   "reset <session-id>",
		Short: "Mark a session pending again",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if _, err := a.reset(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session reset")
			return nil
		}),
	})

	prog.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Remove a session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if _, err := a.delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session deleted")
			return nil
		}),
	})

	prog.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show progress",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := a.program(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), termview.Stats(program.ComputeStats(p.Sessions, timeNow())))
			return nil
		}),
	})

	prog.AddCommand(&cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export the program to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			p, err := a.program(cmd.Context())
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := export.WriteProgram(f, p.Sessions, timeNow()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d session(s) to %s\n", len(p.Sessions), args[0])
			return nil
		}),
	})

	return prog
}

func newSyncCmd(withApp runner) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the server copies, or keep pulling with --watch",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if a.sync.LocalOnly() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "local-only: set server_url and token to sync")
				return nil
			}
			if !watch {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "synced")
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "watching (%s), Ctrl-C to stop\n", syncer.PollSpec)
			return a.sync.Run(ctx, func(res syncer.PullResult) {
				if res.Conversation {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "conversation updated")
				}
				if res.Program {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "program updated")
				}
			})
		}),
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep pulling every 15 seconds")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
