package acoustic

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUnit(t *testing.T, am *Model, p Phoneme) *Unit {
	t.Helper()
	u, ok := am.UnitFor(p)
	require.True(t, ok, "unit %s", p)
	return u
}

func TestHMMTopology(t *testing.T) {
	am := NewFlatModel([]Phoneme{PhonSil, PhonA}, true)
	a := mustUnit(t, am, PhonA)
	h, err := am.ContextDependentHMM(a, nil, nil, PosSingle)
	require.NoError(t, err)

	require.Equal(t, NumStatesPerPhoneme, h.NumStates())
	init := h.InitialState()
	assert.Equal(t, 1, init.Index())
	assert.True(t, init.IsEmitting())
	assert.False(t, h.State(0).IsEmitting())
	assert.True(t, h.ExitState().IsExitState())
	assert.False(t, h.ExitState().IsEmitting())
	assert.Empty(t, h.ExitState().Successors())

	// each emitting state has a self loop and a forward arc
	for i := 1; i <= NumEmittingStates; i++ {
		arcs := h.State(i).Successors()
		require.Len(t, arcs, 2, "state %d", i)
		assert.Equal(t, i, arcs[0].State.Index())
		assert.Equal(t, i+1, arcs[1].State.Index())
		assert.InDelta(t, math.Log(0.5), arcs[0].LogProb, 1e-12)
	}
	assert.Same(t, h, init.HMM())
}

func TestContextDependentHMM_Identity(t *testing.T) {
	am := NewFlatModel([]Phoneme{PhonSil, PhonA, PhonK, PhonI}, true)
	a, k, i := mustUnit(t, am, PhonA), mustUnit(t, am, PhonK), mustUnit(t, am, PhonI)

	h1, err := am.ContextDependentHMM(k, a, i, PosInternal)
	require.NoError(t, err)
	h2, err := am.ContextDependentHMM(k, a, i, PosInternal)
	require.NoError(t, err)
	assert.Same(t, h1, h2)

	h3, err := am.ContextDependentHMM(k, a, i, PosBegin)
	require.NoError(t, err)
	assert.NotSame(t, h1, h3)
	assert.Equal(t, Triphone("a-k+i"), h1.Triphone())
	assert.Equal(t, "a-k+i@i", h1.String())
}

func TestContextDependentHMM_SilenceIgnoresContext(t *testing.T) {
	am := NewFlatModel([]Phoneme{PhonSil, PhonA, PhonK}, false)
	sil, a, k := mustUnit(t, am, PhonSil), mustUnit(t, am, PhonA), mustUnit(t, am, PhonK)

	h1, err := am.ContextDependentHMM(sil, a, k, PosSingle)
	require.NoError(t, err)
	h2, err := am.ContextDependentHMM(sil, k, a, PosSingle)
	require.NoError(t, err)
	assert.Same(t, h1, h2)
	assert.Nil(t, h1.Left)
	assert.Nil(t, h1.Right)
}

func TestContextDependentHMM_Missing(t *testing.T) {
	am := NewFlatModel([]Phoneme{PhonSil, PhonA, PhonK}, false)
	a, k := mustUnit(t, am, PhonA), mustUnit(t, am, PhonK)

	_, err := am.ContextDependentHMM(k, a, a, PosInternal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingHMM))
	assert.Contains(t, err.Error(), "a-k+a@i")

	require.NoError(t, am.AddContextDependent(PhonA, PhonK, PhonA, PosInternal, DefaultTransitions()))
	h, err := am.ContextDependentHMM(k, a, a, PosInternal)
	require.NoError(t, err)
	assert.Equal(t, Triphone("a-k+a"), h.Triphone())
}

func TestAddContextDependent_Validation(t *testing.T) {
	am := NewFlatModel([]Phoneme{PhonA, PhonK}, false)
	err := am.AddContextDependent(PhonA, PhonK, PhonI, PosEnd, DefaultTransitions())
	assert.Error(t, err, "unknown right context")

	err = am.AddContextDependent(PhonA, PhonK, PhonA, PosEnd, [][]float64{{0}})
	assert.Error(t, err, "undersized table")
}

func TestSaveLoad(t *testing.T) {
	am := NewFlatModel([]Phoneme{PhonSil, PhonA, PhonK}, false)
	require.NoError(t, am.AddContextDependent(PhonA, PhonK, PhonA, PosEnd, DefaultTransitions()))

	var buf bytes.Buffer
	require.NoError(t, am.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.False(t, loaded.Backoff)
	require.Len(t, loaded.Units(), 3)
	for i, u := range loaded.Units() {
		assert.Equal(t, am.Units()[i].Name, u.Name)
		assert.Equal(t, i, u.ID)
	}
	assert.True(t, loaded.SilenceUnit().IsSilence())
	assert.Equal(t, 1, loaded.NumContextDependent())

	a, k := mustUnit(t, loaded, PhonA), mustUnit(t, loaded, PhonK)
	_, err = loaded.ContextDependentHMM(k, a, a, PosEnd)
	assert.NoError(t, err)
	_, err = loaded.ContextDependentHMM(k, a, a, PosBegin)
	assert.ErrorIs(t, err, ErrMissingHMM)
}

func TestPositionString(t *testing.T) {
	for _, p := range AllPositions() {
		got, err := ParsePosition(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	assert.True(t, PosBegin.IsWordBeginning())
	assert.True(t, PosSingle.IsWordBeginning())
	assert.False(t, PosInternal.IsWordBeginning())
	assert.True(t, PosEnd.IsWordEnd())
	_, err := ParsePosition("x")
	assert.Error(t, err)
}

func TestIsFillerPhoneme(t *testing.T) {
	assert.True(t, IsFillerPhoneme(PhonSil))
	assert.True(t, IsFillerPhoneme("+breath+"))
	assert.False(t, IsFillerPhoneme(PhonA))
	assert.False(t, IsFillerPhoneme("++"))
}

func TestExpandContexts(t *testing.T) {
	am := NewFlatModel([]Phoneme{PhonSil, PhonA, PhonK}, false)
	// 2 context-dependent bases, 3 left, 3 right, 4 positions
	assert.Equal(t, 2*3*3*NumPositions, am.ExpandContexts())
	assert.Equal(t, 72, am.NumContextDependent())
	assert.Zero(t, am.ExpandContexts(), "second expansion adds nothing")

	a, k, sil := mustUnit(t, am, PhonA), mustUnit(t, am, PhonK), mustUnit(t, am, PhonSil)
	h, err := am.ContextDependentHMM(a, k, sil, PosEnd)
	require.NoError(t, err)
	assert.Equal(t, k, h.Left)
	assert.Equal(t, sil, h.Right)

	_, err = am.ContextDependentHMM(a, nil, k, PosBegin)
	assert.ErrorIs(t, err, ErrMissingHMM, "word boundary contexts are not expanded")
}
