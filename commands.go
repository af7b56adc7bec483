package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/cardlearn/internal/api"
	"github.com/example/cardlearn/internal/bot"
	"github.com/example/cardlearn/internal/excel"
	"github.com/example/cardlearn/pkg/models"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the due-queue report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET_KEY is not set")
			}

			ctx, cancel := signalContext()
			defer cancel()

			sched := a.newScheduler()
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			srv := api.NewServer(a.cfg.HTTPAddr, api.RouterConfig{
				Log:           a.log,
				Auth:          api.NewAuthenticator(a.cfg.JWTSecret),
				CORSOrigins:   a.cfg.CORSOrigins,
				HealthHandler: api.NewHealthHandler(),
				DeckHandler:   api.NewDeckHandler(a.decks, a.enrollment, a.stats, a.clock),
				LearnHandler:  api.NewLearnHandler(a.controller),
			})
			return srv.Run(ctx)
		},
	}
}

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot with due-card reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			b, err := bot.New(bot.DefaultConfig(a.cfg.TelegramToken), a.decks, a.enrollment, a.controller, a.log)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			sched := a.newScheduler(b)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			return b.Run(ctx)
		},
	}
}

func newDeckCmd() *cobra.Command {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	deckCmd.AddCommand(newDeckImportCmd())
	deckCmd.AddCommand(newDeckListCmd())
	deckCmd.AddCommand(newDeckDeleteCmd())
	return deckCmd
}

func newDeckImportCmd() *cobra.Command {
	var (
		title     string
		owner     string
		isDefault bool
		sheet     string
		wordCol   string
		transCol  string
		descCol   string
		startRow  int
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a deck from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return errors.New("--title is required")
			}
			if owner == "" && !isDefault {
				return errors.New("a deck needs an --owner or --default")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			importCfg := excel.DefaultImportConfig(args[0])
			importCfg.SheetName = sheet
			importCfg.WordColumn = wordCol
			importCfg.TranslationColumn = transCol
			importCfg.DescriptionColumn = descCol
			importCfg.StartRow = startRow

			deck := models.Deck{Title: title, IsDefault: isDefault}
			if owner != "" {
				deck.OwnerID = &owner
			}
			if err := a.decks.Create(ctx, &deck); err != nil {
				return err
			}
			result, err := excel.ImportCards(ctx, a.cards, deck.ID, importCfg)
			if err != nil {
				// a failed import leaves no empty deck behind
				if delErr := a.decks.Delete(ctx, deck.ID); delErr != nil {
					a.log.Warn("Failed to remove empty deck", "deck_id", deck.ID, "error", delErr)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deck %d %q: %d cards created, %d rows skipped\n", deck.ID, deck.Title, result.Created, result.Skipped)
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "deck title")
	cmd.Flags().StringVar(&owner, "owner", "", "user id owning the deck")
	cmd.Flags().BoolVar(&isDefault, "default", false, "make the deck visible to every user")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to read (first sheet by default)")
	cmd.Flags().StringVar(&wordCol, "word-col", "A", "column holding the word")
	cmd.Flags().StringVar(&transCol, "translation-col", "B", "column holding the translation")
	cmd.Flags().StringVar(&descCol, "description-col", "C", "column holding the description, empty for none")
	cmd.Flags().IntVar(&startRow, "start-row", 2, "first data row (1-based)")
	return cmd
}

func newDeckListCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List decks, optionally only those a user can see",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var decks []models.Deck
			if user != "" {
				decks, err = a.decks.ListVisible(cmd.Context(), user)
			} else {
				decks, err = a.decks.GetAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range decks {
				owner := "-"
				if d.OwnerID != nil {
					owner = *d.OwnerID
				}
				fmt.Fprintf(out, "%d\t%s\tdefault=%t\towner=%s\n", d.ID, d.Title, d.IsDefault, owner)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "only decks visible to this user id")
	return cmd
}

func newDeckDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deck with its cards and all progress on them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.decks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deck %d deleted\n", id)
			return nil
		},
	}
}

func newEnrollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enroll <user> <deck>",
		Short: "Add every card of a deck to a user's learning set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseID(args[1])
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			created, err := a.enrollment.AddToUser(cmd.Context(), deckID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d progress records created\n", created)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user>",
		Short: "Issue an API bearer token for a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET_KEY is not set")
			}
			token, err := api.NewAuthenticator(a.cfg.JWTSecret).Issue(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
