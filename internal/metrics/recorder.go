package metrics

// FetchOutcome labels how the caching agent answered a request.
type FetchOutcome string

const (
	OutcomeNetwork     FetchOutcome = "network"
	OutcomeCache       FetchOutcome = "cache"
	OutcomeFallback503 FetchOutcome = "fallback_503"
	OutcomePassthrough FetchOutcome = "passthrough"
	OutcomeError       FetchOutcome = "error"
)

// Recorder defines the observability hooks used by the agent, the sync
// engine and the deadline scanner. Components default to NoopRecorder.
type Recorder interface {
	IncFetch(strategy string, outcome FetchOutcome)
	IncCacheWriteFailure(driver string)
	AddGenerationsPurged(n int)
	IncResync(success bool)
	IncOverdue()
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncFetch(string, FetchOutcome) {}
func (NoopRecorder) IncCacheWriteFailure(string)   {}
func (NoopRecorder) AddGenerationsPurged(int)      {}
func (NoopRecorder) IncResync(bool)                {}
func (NoopRecorder) IncOverdue()                   {}
