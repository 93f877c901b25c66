package tap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeForwardsAll(t *testing.T) {
	src := make(chan string, 3)
	src <- "a"
	src <- "b"
	src <- "c"
	close(src)

	p := NewPipe(context.Background(), src, "openai", textDecoder)
	var got []string
	for chunk := range p.Chunks() {
		got = append(got, chunk)
	}

	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, "abc", p.State().Text())
	rec := p.Record()
	require.NotNil(t, rec)
	assert.Equal(t, OutcomeCompleted, rec.Outcome)
	assert.Equal(t, PhaseFinalized, p.State().Phase())
}

func TestPipeInBandError(t *testing.T) {
	boom := errors.New("stream hiccup")
	src := make(chan Delta, 2)
	src <- Delta{Text: "par"}
	src <- Delta{Err: boom}
	close(src)

	p := NewPipe(context.Background(), src, "openai", deltaDecoder)
	var got []Delta
	for chunk := range p.Chunks() {
		got = append(got, chunk)
	}

	// The error chunk itself was still forwarded.
	require.Len(t, got, 2)
	assert.Same(t, boom, got[1].Err)

	rec := p.Record()
	require.NotNil(t, rec)
	assert.Equal(t, OutcomeErrored, rec.Outcome)
	assert.Same(t, boom, rec.Err)
	assert.Equal(t, PhaseFinalizedError, p.State().Phase())
	assert.Equal(t, "par", p.State().Text())
}

func TestPipeContextCancelAbandons(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := make(chan string, 1)
	src <- "first"

	p := NewPipe(ctx, src, "openai", textDecoder)
	first, ok := <-p.Chunks()
	require.True(t, ok)
	assert.Equal(t, "first", first)

	cancel()
	for range p.Chunks() {
	}

	rec := p.Record()
	require.NotNil(t, rec)
	assert.Equal(t, OutcomeAbandoned, rec.Outcome)
	assert.Equal(t, PhaseAbandoned, p.State().Phase())
	assert.Equal(t, 1, p.State().Chunks())
}

func TestPipeCloseReleases(t *testing.T) {
	src := make(chan string)
	p := NewPipe(context.Background(), src, "openai", textDecoder)

	p.Close()
	p.Close()

	_, ok := <-p.Chunks()
	assert.False(t, ok)
	rec := p.Record()
	require.NotNil(t, rec)
	assert.Equal(t, OutcomeAbandoned, rec.Outcome)
}

func TestPipeBufferedOutput(t *testing.T) {
	src := make(chan string, 4)
	for _, c := range []string{"a", "b", "c", "d"} {
		src <- c
	}
	close(src)

	p := NewPipe(context.Background(), src, "openai", textDecoder, WithBuffer(4))

	// With a buffered output the forwarder drains upstream without a
	// consumer attached.
	var got []string
	for chunk := range p.Chunks() {
		got = append(got, chunk)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	require.NotNil(t, p.Record())
	assert.Equal(t, 4, p.Record().Chunks)
}

func TestPipeSuppressed(t *testing.T) {
	src := make(chan string, 2)
	src <- "a"
	src <- "b"
	close(src)

	p := NewPipe(context.Background(), src, "openai", textDecoder, WithSuppressed(true))
	var got []string
	for chunk := range p.Chunks() {
		got = append(got, chunk)
	}

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Nil(t, p.Record())
	assert.Equal(t, PhaseInit, p.State().Phase())
}

func TestPipeNilContext(t *testing.T) {
	src := make(chan string, 1)
	src <- "x"
	close(src)

	p := NewPipe(nil, src, "openai", textDecoder) //nolint:staticcheck
	var got []string
	for chunk := range p.Chunks() {
		got = append(got, chunk)
	}
	assert.Equal(t, []string{"x"}, got)
	require.NotNil(t, p.Record())
}
