package animation

// Stage is a step in handling one animation request
type Stage int

const (
	StageReceived Stage = iota
	StageCacheCheck
	StageCacheHit
	StageCacheMiss
	StagePrompting
	StageModelCall
	StageExtracting
	StageRendering
	StageLocating
	StageRespond
	StageFailed
)

var stageNames = [...]string{
	StageReceived:   "received",
	StageCacheCheck: "cache_check",
	StageCacheHit:   "cache_hit",
	StageCacheMiss:  "cache_miss",
	StagePrompting:  "prompting",
	StageModelCall:  "model_call",
	StageExtracting: "extracting",
	StageRendering:  "rendering",
	StageLocating:   "locating",
	StageRespond:    "respond",
	StageFailed:     "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Observer is told about every stage transition of a request it started
type Observer func(Stage)
