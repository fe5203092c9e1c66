package retrieval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ragtube/internal/retrieval"
)

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockSearcher struct{ mock.Mock }

func (m *MockSearcher) Query(ctx context.Context, vector []float32, limit int) ([]retrieval.Match, error) {
	args := m.Called(ctx, vector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]retrieval.Match), args.Error(1)
}

func (m *MockSearcher) Fetch(ctx context.Context, ids []string) ([]retrieval.Record, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]retrieval.Record), args.Error(1)
}

type MockGenerator struct{ mock.Mock }

func (m *MockGenerator) Stream(ctx context.Context, prompt, system string, emit func(string)) error {
	args := m.Called(ctx, prompt, system)
	if fragments, ok := args.Get(0).([]string); ok {
		for _, f := range fragments {
			emit(f)
		}
	}
	return args.Error(1)
}

func TestService_Answer_GroundsInRankOrder(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockSearcher)
	g := new(MockGenerator)

	vec := []float32{0.1, 0.2}
	e.On("Embed", mock.Anything, "what is discussed?").Return(vec, nil)
	s.On("Query", mock.Anything, vec, 3).Return([]retrieval.Match{
		{ID: "b", Distance: 0.1},
		{ID: "c", Distance: 0.2},
		{ID: "a", Distance: 0.3},
	}, nil)
	// Fetch returns records out of rank order; the grounding must follow the
	// match ranking, not the fetch order.
	s.On("Fetch", mock.Anything, []string{"b", "c", "a"}).Return([]retrieval.Record{
		{ID: "a", Chunk: "third"},
		{ID: "b", Chunk: "first"},
		{ID: "c", Chunk: "second"},
	}, nil)
	g.On("Stream", mock.Anything, "what is discussed?", "Given the following context, first second third").
		Return([]string{"the ", "answer"}, nil)

	svc := retrieval.NewService(e, s, g, 3)
	answer, err := svc.Answer(context.Background(), "what is discussed?")

	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	g.AssertExpectations(t)
}

func TestService_Answer_ZeroMatchesProceedsUngrounded(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockSearcher)
	g := new(MockGenerator)

	e.On("Embed", mock.Anything, "anything?").Return([]float32{0.5}, nil)
	s.On("Query", mock.Anything, mock.Anything, 3).Return([]retrieval.Match{}, nil)
	g.On("Stream", mock.Anything, "anything?", "Given the following context, ").
		Return([]string{"no idea"}, nil)

	svc := retrieval.NewService(e, s, g, 3)
	answer, err := svc.Answer(context.Background(), "anything?")

	require.NoError(t, err)
	assert.Equal(t, "no idea", answer)
	s.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestService_Answer_EmbedFailure(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockSearcher)
	g := new(MockGenerator)

	e.On("Embed", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	svc := retrieval.NewService(e, s, g, 3)
	_, err := svc.Answer(context.Background(), "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, retrieval.ErrRetrieval)
	g.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Answer_GenerationFailure(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockSearcher)
	g := new(MockGenerator)

	e.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	s.On("Query", mock.Anything, mock.Anything, 3).Return([]retrieval.Match{}, nil)
	g.On("Stream", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

	svc := retrieval.NewService(e, s, g, 3)
	_, err := svc.Answer(context.Background(), "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, retrieval.ErrGeneration)
}
