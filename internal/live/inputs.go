package live

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/homescan/live-gateway/internal/observability"
)

// Default queue capacities used when the config leaves them zero.
const (
	defaultAudioQueueSize = 100
	defaultVideoQueueSize = 30
	defaultTextQueueSize  = 16
)

// Activity marks push-to-talk boundaries on the audio queue. Routing the
// boundary markers through the same queue as the audio keeps them ordered
// with the chunks they delimit.
type Activity int

const (
	ActivityNone Activity = iota
	ActivityStart
	ActivityEnd
)

// AudioInput is one item on the audio queue: a PCM chunk or an activity
// boundary marker.
type AudioInput struct {
	Data     []byte
	Activity Activity
}

// VideoFrame is one upstream video frame.
type VideoFrame struct {
	Data     []byte
	MIMEType string
}

// Inputs holds the three upstream FIFO queues of a session. Pushes never
// block: when a queue is full the item is dropped with a warning, so a
// stalled session cannot wedge the producer. Closing the queues is the
// termination sentinel for the pumps.
//
// Inputs has a single-producer contract: Push and Close must be called from
// one goroutine.
type Inputs struct {
	audio chan AudioInput
	video chan VideoFrame
	text  chan string

	logger    zerolog.Logger
	metrics   *observability.Metrics
	closeOnce sync.Once
}

// NewInputs builds the queues with the configured capacities.
func NewInputs(cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Inputs {
	audioSize := cfg.AudioQueueSize
	if audioSize <= 0 {
		audioSize = defaultAudioQueueSize
	}
	videoSize := cfg.VideoQueueSize
	if videoSize <= 0 {
		videoSize = defaultVideoQueueSize
	}
	textSize := cfg.TextQueueSize
	if textSize <= 0 {
		textSize = defaultTextQueueSize
	}

	return &Inputs{
		audio:   make(chan AudioInput, audioSize),
		video:   make(chan VideoFrame, videoSize),
		text:    make(chan string, textSize),
		logger:  logger,
		metrics: metrics,
	}
}

// PushAudio queues one chunk of raw PCM audio.
func (in *Inputs) PushAudio(chunk []byte) {
	select {
	case in.audio <- AudioInput{Data: chunk}:
	default:
		in.logger.Warn().Int("bytes", len(chunk)).Msg("Audio queue full, dropping chunk")
		in.metrics.RecordQueueDrop("audio")
	}
}

// PushActivityStart queues a push-to-talk start marker.
func (in *Inputs) PushActivityStart() {
	select {
	case in.audio <- AudioInput{Activity: ActivityStart}:
	default:
		in.logger.Warn().Msg("Audio queue full, dropping activity start")
		in.metrics.RecordQueueDrop("audio")
	}
}

// PushActivityEnd queues a push-to-talk end marker.
func (in *Inputs) PushActivityEnd() {
	select {
	case in.audio <- AudioInput{Activity: ActivityEnd}:
	default:
		in.logger.Warn().Msg("Audio queue full, dropping activity end")
		in.metrics.RecordQueueDrop("audio")
	}
}

// PushVideo queues one video frame.
func (in *Inputs) PushVideo(frame VideoFrame) {
	select {
	case in.video <- frame:
	default:
		in.logger.Warn().Int("bytes", len(frame.Data)).Msg("Video queue full, dropping frame")
		in.metrics.RecordQueueDrop("video")
	}
}

// PushText queues one text message. The empty string is the end-of-turn
// signal: the text pump turns it into a pure turn boundary.
func (in *Inputs) PushText(text string) {
	select {
	case in.text <- text:
	default:
		in.logger.Warn().Msg("Text queue full, dropping message")
		in.metrics.RecordQueueDrop("text")
	}
}

// Close closes all three queues exactly once, telling the pumps that no
// more input is coming. Items already queued are still delivered.
func (in *Inputs) Close() {
	in.closeOnce.Do(func() {
		close(in.audio)
		close(in.video)
		close(in.text)
	})
}
