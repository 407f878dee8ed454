package pipeline

// Stage names a state of the per-URL state machine.
type Stage string

// Stages of the per-URL state machine.
const (
	StageFetching   Stage = "fetching"
	StageExtracting Stage = "extracting"
	StageDone       Stage = "done"
)

// ProgressEvent represents a progress update while a URL is processed
type ProgressEvent struct {
	URL     string `json:"url"`
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Attempt int    `json:"attempt,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

func (p *Processor) emit(url string, stage Stage, message string, attempt int, content any) {
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(ProgressEvent{
			URL:     url,
			Stage:   stage,
			Message: message,
			Attempt: attempt,
			Content: content,
		})
	}
}
