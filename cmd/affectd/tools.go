package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alex/affect/internal/affect"
	"github.com/alex/affect/internal/store"
)

var classifyCmd = &cobra.Command{
	Use:     "classify <valence> <arousal>",
	Short:   "Show the mood and display emotion for a point",
	Example: "  affectd classify 6 2\n  affectd classify -- -5 7",
	Args:    cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("valence: %w", err)
		}
		a, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("arousal: %w", err)
		}
		v, a = affect.ClampAxis(v), affect.ClampAxis(a)
		fmt.Printf("mood=%s display=%s\n", affect.Classify(v, a), affect.ResolveDisplay(v, a))
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List built-in, configured and stored events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		engine, err := newEngine(cmd.Context(), cfg, st, zerolog.Nop())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEYWORD\tVALENCE\tAROUSAL\tTOUCH\tREST\tSOCIAL\tHUNGER")
		for _, p := range engine.Events() {
			fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.0f\t%.0f\t%.0f\t%.0f\n",
				p.Keyword, p.Valence, p.Arousal, p.Touch, p.Rest, p.Social, p.Hunger)
		}
		return w.Flush()
	},
}

var temperamentCmd = &cobra.Command{
	Use:   "temperament",
	Short: "Show or change the persisted temperament",
}

func init() {
	temperamentCmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the persisted temperament",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(func(st store.Store, fallback affect.Vector) error {
					t, ok, err := st.LoadTemperament(cmd.Context())
					if err != nil {
						return err
					}
					source := "stored"
					if !ok {
						t, source = fallback, "config"
					}
					fmt.Printf("valence=%.2f arousal=%.2f mood=%s (%s)\n", t.Valence, t.Arousal, t.Category(), source)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "set <valence> <arousal>",
			Short:   "Persist a new temperament",
			Example: "  affectd temperament set -- -2 4",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("valence: %w", err)
				}
				a, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("arousal: %w", err)
				}
				t := affect.Vector{Valence: v, Arousal: a}.Clamped()
				return withStore(func(st store.Store, _ affect.Vector) error {
					return saveTemperament(cmd.Context(), st, t)
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset the persisted temperament to the configured one",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(func(st store.Store, fallback affect.Vector) error {
					return saveTemperament(cmd.Context(), st, fallback)
				})
			},
		},
	)
}

// withStore opens the configured store and passes it along with the
// configured temperament.
func withStore(fn func(st store.Store, fallback affect.Vector) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st, cfg.EngineConfig().Temperament.Clamped())
}

func saveTemperament(ctx context.Context, st store.Store, t affect.Vector) error {
	if err := st.SaveTemperament(ctx, t); err != nil {
		return err
	}
	fmt.Printf("valence=%.2f arousal=%.2f mood=%s\n", t.Valence, t.Arousal, t.Category())
	return nil
}
