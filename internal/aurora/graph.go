package aurora

import (
	"github.com/kode4food/nebula/internal/engine"
	"github.com/kode4food/nebula/pkg/api"
)

const GraphName = "AuroraText Condenser (Option B Summarization)"

const (
	NodeShardSplitter api.NodeKey = "ShardSplitter"
	NodeEchoSummoner  api.NodeKey = "EchoSummoner"
	NodeFusionWeaver  api.NodeKey = "FusionWeaver"
	NodeClarityPulse  api.NodeKey = "ClarityPulse"
	NodeThresholdGate api.NodeKey = "ThresholdGate"
)

// Nodes returns the condenser's node bindings
func Nodes() map[api.NodeKey]api.ToolName {
	return map[api.NodeKey]api.ToolName{
		NodeShardSplitter: ShardSplitter,
		NodeEchoSummoner:  EchoSummoner,
		NodeFusionWeaver:  FusionWeaver,
		NodeClarityPulse:  ClarityPulse,
		NodeThresholdGate: ThresholdGate,
	}
}

// Edges returns the condenser's edges. The gate loops back to ClarityPulse
// until it sets the stop signal
func Edges() map[api.NodeKey]api.NodeKey {
	return map[api.NodeKey]api.NodeKey{
		NodeShardSplitter: NodeEchoSummoner,
		NodeEchoSummoner:  NodeFusionWeaver,
		NodeFusionWeaver:  NodeClarityPulse,
		NodeClarityPulse:  NodeThresholdGate,
		NodeThresholdGate: NodeClarityPulse,
	}
}

// CreateGraph registers the condenser tools with the engine and defines the
// condenser graph
func CreateGraph(e *engine.Engine) api.GraphID {
	RegisterTools(e.Tools())
	return e.CreateGraph(GraphName, Nodes(), Edges(), NodeShardSplitter)
}

// DefaultState returns a copy of st with the tuning parameters filled in
// where the caller left them unset
func DefaultState(st api.State) api.State {
	res := st.Copy()
	defaults := map[api.Name]int{
		KeyChunkSize:     DefaultChunkSize,
		KeyPerChunkWords: DefaultPerChunkWords,
		KeySoftMaxLength: DefaultSoftMaxLength,
		KeySummaryLimit:  DefaultSummaryLimit,
	}
	for k, v := range defaults {
		if _, ok := res[k]; !ok {
			res[k] = v
		}
	}
	return res
}
