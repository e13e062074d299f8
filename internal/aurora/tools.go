package aurora

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kode4food/nebula/internal/tools"
	"github.com/kode4food/nebula/pkg/api"
)

const (
	ShardSplitter api.ToolName = "shard_splitter"
	EchoSummoner  api.ToolName = "echo_summoner"
	FusionWeaver  api.ToolName = "fusion_weaver"
	ClarityPulse  api.ToolName = "clarity_pulse"
	ThresholdGate api.ToolName = "threshold_gate"
)

const (
	KeyInputText      api.Name = "input_text"
	KeyChunkSize      api.Name = "chunk_size"
	KeyChunks         api.Name = "chunks"
	KeyPerChunkWords  api.Name = "per_chunk_words"
	KeyChunkSummaries api.Name = "chunk_summaries"
	KeyMergedSummary  api.Name = "merged_summary"
	KeySoftMaxLength  api.Name = "soft_max_length"
	KeyFinalSummary   api.Name = "final_summary"
	KeySummaryLimit   api.Name = "summary_limit"
)

const (
	DefaultChunkSize     = 80
	DefaultPerChunkWords = 25
	DefaultSoftMaxLength = 600
	DefaultSummaryLimit  = 300

	// SoftMaxStep is how much each failed gate tightens soft_max_length
	SoftMaxStep = 50

	summarySeparator = ". "
)

var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// RegisterTools binds the AuroraText tools into reg
func RegisterTools(reg *tools.Registry) {
	reg.Register(ShardSplitter, tools.Func(SplitShards))
	reg.Register(EchoSummoner, tools.Func(SummonEchoes))
	reg.Register(FusionWeaver, tools.Func(WeaveFusion))
	reg.Register(ClarityPulse, tools.Func(PulseClarity))
	reg.Register(ThresholdGate, tools.Func(GateThreshold))
}

// SplitShards splits input_text into chunks of chunk_size words
func SplitShards(st api.State) (api.State, error) {
	size := st.GetInt(KeyChunkSize, DefaultChunkSize)
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, size)
	}

	words := strings.Fields(textValue(st, KeyInputText))
	chunks := []any{}
	for i := 0; i < len(words); i += size {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}

	st[KeyChunks] = chunks
	return st, nil
}

// SummonEchoes summarizes each chunk by its first per_chunk_words words
func SummonEchoes(st api.State) (api.State, error) {
	limit := max(st.GetInt(KeyPerChunkWords, DefaultPerChunkWords), 0)

	chunks := st.GetStrings(KeyChunks)
	res := make([]any, 0, len(chunks))
	for _, chunk := range chunks {
		words := strings.Fields(chunk)
		res = append(res, strings.Join(words[:min(limit, len(words))], " "))
	}

	st[KeyChunkSummaries] = res
	return st, nil
}

// WeaveFusion joins the non-blank chunk summaries into merged_summary
func WeaveFusion(st api.State) (api.State, error) {
	var parts []string
	for _, s := range st.GetStrings(KeyChunkSummaries) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	st[KeyMergedSummary] = strings.Join(parts, summarySeparator)
	return st, nil
}

// PulseClarity normalizes whitespace in merged_summary and, when the result
// is longer than soft_max_length characters, cuts it back to the last word
// boundary within that length. The result is stored as final_summary
func PulseClarity(st api.State) (api.State, error) {
	summary := textValue(st, KeyMergedSummary)
	refined := strings.Join(strings.Fields(summary), " ")

	softMax := st.GetInt(KeySoftMaxLength, DefaultSoftMaxLength)
	if utf8.RuneCountInString(refined) > softMax {
		refined = truncateAtWord(refined, max(softMax, 0))
	}

	st[KeyFinalSummary] = refined
	return st, nil
}

// GateThreshold stops the run once final_summary fits summary_limit, and
// otherwise tightens soft_max_length for another refinement pass
func GateThreshold(st api.State) (api.State, error) {
	summary := textValue(st, KeyFinalSummary)
	limit := st.GetInt(KeySummaryLimit, DefaultSummaryLimit)

	if utf8.RuneCountInString(summary) <= limit {
		st[api.StopKey] = true
		return st, nil
	}

	softMax := st.GetInt(KeySoftMaxLength, DefaultSoftMaxLength)
	st[KeySoftMaxLength] = max(limit, softMax-SoftMaxStep)
	return st, nil
}

func truncateAtWord(s string, n int) string {
	cut := string([]rune(s)[:n])
	if i := strings.LastIndex(cut, " "); i >= 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

func textValue(st api.State, name api.Name) string {
	switch v := st[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
