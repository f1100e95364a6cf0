package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alex/affect/internal/affect"
	"github.com/alex/affect/internal/presenter"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Interactive simulator: type event keywords and watch the responses",
	Args:  cobra.NoArgs,
	RunE:  runSim,
}

type sim struct {
	engine *affect.Engine
	idler  *presenter.Idler
}

func runSim(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Close()

	engine, err := affect.New(cfg.EngineConfig(), affect.WithLogger(logger.Component("engine")))
	if err != nil {
		return err
	}
	for _, p := range cfg.EventProfiles() {
		if _, err := engine.RegisterEvent(p); err != nil {
			fmt.Printf("Warning: skipping event %q: %v\n", p.Keyword, err)
		}
	}

	s := &sim{engine: engine, idler: presenter.NewIdler(nil)}

	fmt.Println("=== Affective State Simulator ===")
	if cfg.TimeScale() != 1 {
		fmt.Printf("Time runs %.0fx faster than real time.\n", cfg.TimeScale())
	}
	fmt.Println()
	s.printState()
	s.printHelp()

	tickTicker := time.NewTicker(1 * time.Second)
	defer tickTicker.Stop()

	// Idle micro-behaviours between responses
	idleTicker := time.NewTicker(3 * time.Second)
	defer idleTicker.Stop()

	inputChan := make(chan string)
	go readInput(inputChan)

	for {
		select {
		case <-tickTicker.C:
			results := s.engine.Tick(1)
			if len(results) > 0 {
				fmt.Println()
				for _, res := range results {
					s.printResponse(res)
				}
				fmt.Print("> ")
			}

		case <-idleTicker.C:
			if s.engine.SleepState() == affect.Asleep {
				continue
			}
			if micro := s.idler.Select(s.engine.Mood().Category); micro != nil {
				fmt.Printf("\n[idle] *%s*\n", micro.Name)
				fmt.Print("> ")
			}

		case input, ok := <-inputChan:
			if !ok {
				fmt.Println()
				return nil
			}
			if input == "" {
				continue
			}
			if !s.handleInput(input) {
				fmt.Println("Bye!")
				return nil
			}
		}
	}
}

// handleInput returns false when the user asks to quit.
func (s *sim) handleInput(input string) bool {
	input = strings.TrimSpace(input)

	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return false
	case "help", "?":
		s.printHelp()
		return true
	case "status", "s":
		s.printState()
		return true
	case "events":
		for _, p := range s.engine.Events() {
			fmt.Printf("  %-20s v=%5.1f a=%5.1f\n", p.Keyword, p.Valence, p.Arousal)
		}
		return true
	case "wake":
		if res, ok := s.engine.Wake(); ok {
			s.printResponse(res)
		} else {
			fmt.Println("Already awake.")
		}
		return true
	case "feed":
		s.engine.Feed(affect.FeedingHunger)
		fmt.Printf("Hunger is now %.0f\n", s.engine.Gauges().Hunger)
		return true
	}

	results, err := s.engine.Dispatch(input)
	switch {
	case errors.Is(err, affect.ErrUnknownEvent):
		fmt.Printf("Unknown event: %s (type 'events' for options)\n", input)
	case err != nil:
		fmt.Printf("Ignored: %v\n", err)
	}
	for _, res := range results {
		s.printResponse(res)
	}
	return true
}

func (s *sim) printResponse(res affect.ResponseResult) {
	cue := presenter.CueFor(res)
	fmt.Printf("[%s] %s (v=%.1f a=%.1f) face=%s", res.Trigger, res.Display, res.Valence, res.Arousal, cue.Face)
	if cue.Thought != "" && cue.Thought != presenter.Off {
		fmt.Printf(" thought=%s", cue.Thought)
	}
	fmt.Printf("  mood now %s\n", res.Mood)
}

func (s *sim) printState() {
	snap := s.engine.Snapshot()
	fmt.Println()
	fmt.Printf("  Mood:        %s (%.1f, %.1f)\n", snap.Mood.Category, snap.Mood.Valence, snap.Mood.Arousal)
	fmt.Printf("  Temperament: %s (%.1f, %.1f)\n", snap.Temperament.Category, snap.Temperament.Valence, snap.Temperament.Arousal)
	fmt.Printf("  Needs:       touch=%.0f rest=%.0f social=%.0f hunger=%.0f\n",
		snap.Gauges.Touch, snap.Gauges.Rest, snap.Gauges.Social, snap.Gauges.Hunger)
	fmt.Printf("  Sleep:       %s\n", snap.Sleep)
	fmt.Printf("  Cooldown:    %s left of %s\n", snap.Cooldown.Remaining.Round(time.Millisecond), snap.Cooldown.Window.Round(time.Millisecond))
	fmt.Println()
}

func (s *sim) printHelp() {
	fmt.Println("Type an event keyword (e.g. NameHeard, Feeding, LoudNoise) to trigger it.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  status, s      - show current state")
	fmt.Println("  events         - list known events")
	fmt.Println("  wake           - wake up")
	fmt.Println("  feed           - restore hunger")
	fmt.Println("  help, ?        - show this help")
	fmt.Println("  quit, exit, q  - exit")
	fmt.Println()
}

func readInput(ch chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if scanner.Scan() {
			ch <- scanner.Text()
		} else {
			close(ch)
			return
		}
	}
}
