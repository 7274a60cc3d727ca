package lextree

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ieee0824/lextree-go/acoustic"
	"github.com/ieee0824/lextree-go/config"
	"github.com/ieee0824/lextree-go/decoder"
	"github.com/ieee0824/lextree-go/internal/trace"
	"github.com/ieee0824/lextree-go/language"
	"github.com/ieee0824/lextree-go/lexicon"
	"github.com/ieee0824/lextree-go/linguist"
)

// SearchSpace is a compiled lexical tree together with the models it was
// built from.
type SearchSpace struct {
	AM       *acoustic.Model
	LM       *language.NGramModel
	Dict     *lexicon.Dictionary
	Linguist *linguist.Linguist

	LinguistCfg linguist.Config
	WalkCfg     decoder.Config

	fillerPath string
	logger     *log.Logger
	ctx        context.Context
}

// Option configures a SearchSpace.
type Option func(*SearchSpace)

// WithFillerDictionary loads filler words from path before compiling.
// Filler words only enter the tree when the linguist config enables them.
// The words are added to the SearchSpace dictionary, which is the caller's
// dictionary under NewSearchSpaceFromModels.
func WithFillerDictionary(path string) Option {
	return func(s *SearchSpace) {
		s.fillerPath = path
	}
}

// WithConfig applies the linguist and walk sections of cfg, and its filler
// dictionary unless one was given explicitly.
func WithConfig(cfg *config.Config) Option {
	return func(s *SearchSpace) {
		s.LinguistCfg = cfg.Linguist
		s.WalkCfg = cfg.Walk
		if s.fillerPath == "" {
			s.fillerPath = cfg.Model.Filler
		}
	}
}

// WithLinguistConfig sets custom compile and scoring parameters.
func WithLinguistConfig(cfg linguist.Config) Option {
	return func(s *SearchSpace) {
		s.LinguistCfg = cfg
	}
}

// WithWalkConfig sets custom walk parameters.
func WithWalkConfig(cfg decoder.Config) Option {
	return func(s *SearchSpace) {
		s.WalkCfg = cfg
	}
}

// WithLogger sets the logger used while compiling.
func WithLogger(l *log.Logger) Option {
	return func(s *SearchSpace) {
		s.logger = l
	}
}

// WithContext sets the parent context of the load and compile spans.
func WithContext(ctx context.Context) Option {
	return func(s *SearchSpace) {
		s.ctx = ctx
	}
}

func newSearchSpace(opts []Option) *SearchSpace {
	s := &SearchSpace{
		LinguistCfg: linguist.DefaultConfig(),
		WalkCfg:     decoder.DefaultConfig(),
		ctx:         context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSearchSpace loads the acoustic model (gob), language model (ARPA)
// and dictionary from files and compiles the tree.
func NewSearchSpace(amPath, lmPath, dictPath string, opts ...Option) (*SearchSpace, error) {
	s := newSearchSpace(opts)
	ctx, span := trace.StartSpan(s.ctx, "lextree.load")
	defer span.End()

	err := trace.WithSpan(ctx, "load.acoustic", func(context.Context) error {
		f, err := os.Open(amPath)
		if err != nil {
			return fmt.Errorf("open acoustic model: %w", err)
		}
		defer f.Close()
		s.AM, err = acoustic.Load(f)
		if err != nil {
			return fmt.Errorf("load acoustic model: %w", err)
		}
		return nil
	}, trace.WithAttributes(trace.ModelAttrs("acoustic", amPath)...))
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}

	err = trace.WithSpan(ctx, "load.language", func(context.Context) error {
		s.LM, err = language.LoadARPAFile(lmPath)
		if err != nil {
			return fmt.Errorf("load language model: %w", err)
		}
		return nil
	}, trace.WithAttributes(trace.ModelAttrs("language", lmPath)...))
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}

	err = trace.WithSpan(ctx, "load.dictionary", func(context.Context) error {
		s.Dict, err = lexicon.LoadFile(dictPath, s.AM)
		if err != nil {
			return fmt.Errorf("load dictionary: %w", err)
		}
		return nil
	}, trace.WithAttributes(trace.ModelAttrs("dictionary", dictPath)...))
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}

	if err := s.compile(ctx); err != nil {
		trace.RecordError(span, err)
		return nil, err
	}
	return s, nil
}

// NewSearchSpaceFromModels compiles the tree from pre-loaded models. A
// filler dictionary given with WithFillerDictionary or WithConfig is loaded
// into dict.
func NewSearchSpaceFromModels(am *acoustic.Model, lm *language.NGramModel, dict *lexicon.Dictionary, opts ...Option) (*SearchSpace, error) {
	s := newSearchSpace(opts)
	s.AM, s.LM, s.Dict = am, lm, dict
	if err := s.compile(s.ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SearchSpace) compile(ctx context.Context) error {
	if s.fillerPath != "" {
		if err := s.Dict.LoadFillerFile(s.fillerPath); err != nil {
			return fmt.Errorf("load filler dictionary: %w", err)
		}
	}

	_, span := trace.StartSpan(ctx, "linguist.compile")
	defer span.End()

	var opts []linguist.Option
	if s.logger != nil {
		opts = append(opts, linguist.WithLogger(s.logger))
	}
	l, err := linguist.Build(s.AM, s.Dict, s.LM, s.LinguistCfg, opts...)
	if err != nil {
		trace.RecordError(span, err)
		return fmt.Errorf("compile tree: %w", err)
	}
	s.Linguist = l

	st := l.Tree().Stats()
	trace.SetAttributes(span,
		attribute.Int(trace.AttrTreeNodes, st.Nodes),
		attribute.Int(trace.AttrTreeWords, st.Words),
		attribute.Int(trace.AttrTreeEntryUnits, st.EntryUnits),
		attribute.Int(trace.AttrTreeDropped, st.DroppedWords),
	)
	return nil
}

// Tree returns the compiled lexical tree.
func (s *SearchSpace) Tree() *linguist.Tree {
	return s.Linguist.Tree()
}

// Stats returns the compile statistics of the tree.
func (s *SearchSpace) Stats() linguist.Stats {
	return s.Linguist.Tree().Stats()
}

// Dump writes the tree to w.
func (s *SearchSpace) Dump(w io.Writer) error {
	return s.Linguist.Tree().Dump(w)
}

// Walk runs the search-space walker over the tree with the configured
// walk parameters.
func (s *SearchSpace) Walk(ctx context.Context) (*decoder.Result, error) {
	ctx, span := trace.StartSpan(ctx, "decoder.walk")
	defer span.End()

	res, err := decoder.Walk(ctx, s.Linguist, s.WalkCfg)
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}
	trace.SetAttributes(span,
		attribute.String(trace.AttrWalkID, res.ID),
		attribute.Int(trace.AttrWalkFrames, res.Frames),
		attribute.Int(trace.AttrWalkHypotheses, len(res.Hypotheses)),
		attribute.Int(trace.AttrWalkStates, res.Stats.States),
	)
	return res, nil
}
