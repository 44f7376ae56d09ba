package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulator_ChunkedMatchesSingle(t *testing.T) {
	var chunked Accumulator
	for _, p := range []string{"ab", "cd", "ef"} {
		chunked.Write([]byte(p), true)
	}

	var single Accumulator
	single.Write([]byte("abcdef"), false)

	got := chunked.Finish()
	assert.Equal(t, "abcdef", string(got))
	assert.Equal(t, got, single.Finish())
}

func TestAccumulator_MixedFraming(t *testing.T) {
	var a Accumulator
	a.Write([]byte(`{"messageIds":`), false)
	a.Write([]byte(`["1"]}`), true)

	assert.Equal(t, `{"messageIds":["1"]}`, string(a.Finish()))
}

func TestAccumulator_EmptyFinishIsNotNil(t *testing.T) {
	var a Accumulator
	body := a.Finish()

	assert.NotNil(t, body)
	assert.Empty(t, body)
}

func TestAccumulator_FinishResets(t *testing.T) {
	var a Accumulator
	a.Write([]byte("first"), false)
	first := a.Finish()

	assert.Zero(t, a.Len())
	a.Write([]byte("second"), false)
	assert.Equal(t, "second", string(a.Finish()))
	assert.Equal(t, "first", string(first))
}

func TestAccumulator_AbandonDropsBytes(t *testing.T) {
	var a Accumulator
	a.Write([]byte("partial"), true)
	assert.Equal(t, 7, a.Len())

	a.Abandon()
	assert.Zero(t, a.Len())

	a.Write([]byte("fresh"), false)
	assert.Equal(t, "fresh", string(a.Finish()))
}

func TestAccumulator_DoesNotAliasInput(t *testing.T) {
	var a Accumulator
	p := []byte("abc")
	a.Write(p, false)
	p[0] = 'z'

	assert.Equal(t, "abc", string(a.Finish()))
}
