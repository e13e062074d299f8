package aurora_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/nebula/internal/aurora"
	"github.com/kode4food/nebula/internal/tools"
	"github.com/kode4food/nebula/pkg/api"
)

func words(n int, w string) string {
	res := make([]string, n)
	for i := range res {
		res[i] = w
	}
	return strings.Join(res, " ")
}

func TestSplitShards(t *testing.T) {
	st, err := aurora.SplitShards(api.State{
		"input_text": "  one two   three\nfour five ",
		"chunk_size": 2,
	})
	require.NoError(t, err)
	assert.Equal(t,
		[]any{"one two", "three four", "five"}, st[aurora.KeyChunks],
	)
}

func TestSplitShardsDefaults(t *testing.T) {
	st, err := aurora.SplitShards(api.State{
		"input_text": words(170, "w"),
	})
	require.NoError(t, err)
	chunks := st.GetStrings(aurora.KeyChunks)
	require.Len(t, chunks, 3)
	assert.Len(t, strings.Fields(chunks[0]), 80)
	assert.Len(t, strings.Fields(chunks[2]), 10)

	st, err = aurora.SplitShards(api.State{})
	require.NoError(t, err)
	assert.Equal(t, []any{}, st[aurora.KeyChunks])
}

func TestSplitShardsNonString(t *testing.T) {
	st, err := aurora.SplitShards(api.State{
		"input_text": 12345, "chunk_size": float64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"12345"}, st[aurora.KeyChunks])
}

func TestSplitShardsInvalidSize(t *testing.T) {
	_, err := aurora.SplitShards(api.State{
		"input_text": "a b", "chunk_size": 0,
	})
	assert.ErrorIs(t, err, aurora.ErrInvalidChunkSize)
}

func TestSummonEchoes(t *testing.T) {
	st, err := aurora.SummonEchoes(api.State{
		"chunks":          []any{"a b c d", "e f", ""},
		"per_chunk_words": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"a b c", "e f", ""}, st[aurora.KeyChunkSummaries])

	st, err = aurora.SummonEchoes(api.State{})
	require.NoError(t, err)
	assert.Equal(t, []any{}, st[aurora.KeyChunkSummaries])
}

func TestWeaveFusion(t *testing.T) {
	st, err := aurora.WeaveFusion(api.State{
		"chunk_summaries": []any{" first ", "", "  ", "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, "first. second", st[aurora.KeyMergedSummary])

	st, err = aurora.WeaveFusion(api.State{})
	require.NoError(t, err)
	assert.Equal(t, "", st[aurora.KeyMergedSummary])
}

func TestPulseClarity(t *testing.T) {
	st, err := aurora.PulseClarity(api.State{
		"merged_summary": "  alpha \n beta\tgamma  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha beta gamma", st[aurora.KeyFinalSummary])

	st, err = aurora.PulseClarity(api.State{
		"merged_summary":  "alpha beta gamma",
		"soft_max_length": 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha beta", st[aurora.KeyFinalSummary])

	st, err = aurora.PulseClarity(api.State{
		"merged_summary":  "abcdefghij",
		"soft_max_length": 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "abcd", st[aurora.KeyFinalSummary])

	st, err = aurora.PulseClarity(api.State{"merged_summary": nil})
	require.NoError(t, err)
	assert.Equal(t, "", st[aurora.KeyFinalSummary])
}

func TestPulseClarityCountsCharacters(t *testing.T) {
	st, err := aurora.PulseClarity(api.State{
		"merged_summary":  "héllo wörld",
		"soft_max_length": 11,
	})
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", st[aurora.KeyFinalSummary])
}

func TestGateThreshold(t *testing.T) {
	st, err := aurora.GateThreshold(api.State{
		"final_summary": "short",
		"summary_limit": 10,
	})
	require.NoError(t, err)
	assert.True(t, st.Stopped())

	st, err = aurora.GateThreshold(api.State{
		"final_summary":   words(20, "long"),
		"summary_limit":   10,
		"soft_max_length": 100,
	})
	require.NoError(t, err)
	assert.False(t, st.Stopped())
	assert.Equal(t, 50, st[aurora.KeySoftMaxLength])

	st, err = aurora.GateThreshold(api.State{
		"final_summary":   words(20, "long"),
		"summary_limit":   40,
		"soft_max_length": 60,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, st[aurora.KeySoftMaxLength])
}

func TestRegisterTools(t *testing.T) {
	reg := tools.NewRegistry()
	aurora.RegisterTools(reg)

	assert.Equal(t, []api.ToolName{
		aurora.ClarityPulse,
		aurora.EchoSummoner,
		aurora.FusionWeaver,
		aurora.ShardSplitter,
		aurora.ThresholdGate,
	}, reg.Names())
}
