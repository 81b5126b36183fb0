package entities

// Well-known PipelineState keys
const (
	StateKeyInput      = "input"
	StateKeyFilePath   = "file_path"
	StateKeyTranscript = "transcript"
	StateKeyInsights   = "insights"
	StateKeyActions    = "actions"
	StateKeyRunID      = "run_id"
)

// PipelineState is the open mapping threaded through the pipeline stages.
// Stages add or overwrite keys; no stage removes one.
type PipelineState map[string]interface{}

// Clone returns a shallow copy of the state
func (s PipelineState) Clone() PipelineState {
	out := make(PipelineState, len(s)+4)
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a new state holding every key of s plus the keys of update.
// Keys present in both take the value from update.
func (s PipelineState) Merge(update PipelineState) PipelineState {
	out := s.Clone()
	for k, v := range update {
		out[k] = v
	}
	return out
}

// String returns the value under key if it is a string
func (s PipelineState) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// FilePath reads file_path, falling back to input.file_path
func (s PipelineState) FilePath() string {
	if p := s.String(StateKeyFilePath); p != "" {
		return p
	}
	switch input := s[StateKeyInput].(type) {
	case map[string]interface{}:
		p, _ := input[StateKeyFilePath].(string)
		return p
	case map[string]string:
		return input[StateKeyFilePath]
	case PipelineState:
		return input.String(StateKeyFilePath)
	}
	return ""
}

// Insights returns the insights stored by the analysis stage
func (s PipelineState) Insights() (Insights, bool) {
	switch v := s[StateKeyInsights].(type) {
	case Insights:
		return v, true
	case *Insights:
		if v != nil {
			return *v, true
		}
	}
	return Insights{}, false
}

// Actions returns the results stored by the dispatch stage
func (s PipelineState) Actions() []DispatchResult {
	v, _ := s[StateKeyActions].([]DispatchResult)
	return v
}
