package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	lextree "github.com/ieee0824/lextree-go"
	"github.com/ieee0824/lextree-go/config"
	"github.com/ieee0824/lextree-go/internal/trace"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: ~/.lextreerc, /etc/lextree/config.yaml)")
	amPath := flag.String("am", "", "path to acoustic model file (overrides config)")
	lmPath := flag.String("lm", "", "path to language model (ARPA format, overrides config)")
	dictPath := flag.String("dict", "", "path to pronunciation dictionary (overrides config)")
	fillerPath := flag.String("filler", "", "path to filler dictionary (overrides config)")
	dump := flag.Bool("dump", false, "dump the compiled tree to stdout")
	walk := flag.Bool("walk", false, "walk the search space with simulated acoustic scores")
	verbose := flag.Bool("v", false, "verbose output")

	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *amPath != "" {
		cfg.Model.Acoustic = *amPath
	}
	if *lmPath != "" {
		cfg.Model.Language = *lmPath
	}
	if *dictPath != "" {
		cfg.Model.Dictionary = *dictPath
	}
	if *fillerPath != "" {
		cfg.Model.Filler = *fillerPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(os.Stdout, cfg, *dump, *walk, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, cfg *config.Config, dump, walk, verbose bool) error {
	ctx := context.Background()
	if err := trace.Initialize(ctx, &cfg.Trace); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := trace.Shutdown(shutdownCtx); err != nil {
			log.Printf("[main] %v", err)
		}
	}()
	ctx, span := trace.StartSpan(ctx, "lextree.run")
	defer span.End()

	logger := log.New(io.Discard, "", 0)
	if verbose {
		logger = log.New(os.Stderr, "lextree: ", log.LstdFlags)
	}

	s, err := lextree.NewSearchSpace(cfg.Model.Acoustic, cfg.Model.Language, cfg.Model.Dictionary,
		lextree.WithConfig(cfg),
		lextree.WithLogger(logger),
		lextree.WithContext(ctx),
	)
	if err != nil {
		return err
	}

	st := s.Stats()
	fmt.Fprintf(w, "words: %d (dropped %d), pronunciations: %d\n", st.Words, st.DroppedWords, st.Pronunciations)
	fmt.Fprintf(w, "entry units: %d, exit units: %d\n", st.EntryUnits, st.ExitUnits)
	fmt.Fprintf(w, "nodes: %d (hmm %d, word %d, branch %d), edges: %d, hmms: %d\n",
		st.Nodes, st.HMMNodes, st.WordNodes, st.BranchNodes, st.Edges, st.HMMs)
	fmt.Fprintf(w, "compile time: %s\n", st.Elapsed)

	if dump {
		if err := s.Dump(w); err != nil {
			return fmt.Errorf("dump tree: %w", err)
		}
	}

	if !walk {
		return nil
	}
	res, err := s.Walk(ctx)
	if err != nil {
		return fmt.Errorf("walk: %w", err)
	}
	fmt.Fprintf(w, "walk %s: %d frames\n", res.ID, res.Frames)
	if id := trace.TraceID(ctx); id != "" {
		fmt.Fprintf(w, "trace %s\n", id)
	}
	fmt.Fprintf(w, " MaxSuccessors : %d\n", res.Stats.MaxSuccessors)
	fmt.Fprintf(w, " TotalStates   : %d\n", res.Stats.States)
	fmt.Fprintf(w, " TotalEmitting : %d\n", res.Stats.Emitting)
	fmt.Fprintf(w, "   NonEmitting : %d\n", res.Stats.NonEmitting)
	fmt.Fprintf(w, "  Final States : %d\n", res.Stats.Final)
	fmt.Fprintf(w, "   Peak Active : %d\n", res.Stats.PeakActive)
	fmt.Fprintf(w, "score\tlm\ttext\n")
	for _, h := range res.Hypotheses {
		words := make([]string, len(h.Words))
		for i, word := range h.Words {
			words[i] = word.Text
		}
		fmt.Fprintf(w, "%.4f\t%.4f\t%s\n", h.LogScore, s.LM.SentenceLogProb(words), h.Text)
		if verbose {
			for _, word := range h.Words {
				fmt.Fprintf(os.Stderr, "  [%d-%d] %s\n", word.StartFrame, word.EndFrame, word.Text)
			}
		}
	}
	return nil
}
