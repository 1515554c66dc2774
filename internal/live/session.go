// Package live implements the session coordinator: it multiplexes a
// client's audio, video and text queues up into one live model connection,
// demultiplexes the connection's downstream traffic into normalized events,
// and executes server-invoked tool calls along the way.
package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/homescan/live-gateway/internal/observability"
	"github.com/homescan/live-gateway/internal/tools"
)

// eventQueueSize buffers the downstream event channel so short consumer
// stalls don't back up the receive loop.
const eventQueueSize = 64

// ErrAlreadyStarted is returned by Start on a session that is already running.
var ErrAlreadyStarted = errors.New("session already started")

// Config carries the per-session connection settings.
type Config struct {
	Model             string
	Voice             string
	SystemInstruction string

	// InputSampleRate is the PCM rate of upstream audio; it becomes the
	// audio MIME type sent with every chunk.
	InputSampleRate int

	// ManualActivity disables the remote side's automatic voice activity
	// detection and forwards the client's explicit push-to-talk boundaries
	// instead.
	ManualActivity bool

	// ToolTimeout bounds each tool handler invocation. Zero disables the
	// bound.
	ToolTimeout time.Duration

	AudioQueueSize int
	VideoQueueSize int
	TextQueueSize  int
}

// Callbacks are invoked from the session's receive loop. OnAudioOutput gets
// every inbound audio part; OnInterrupt runs before the interrupted event is
// emitted. Either may be nil.
type Callbacks struct {
	OnAudioOutput func(data []byte)
	OnInterrupt   func()
}

// Session coordinates one live conversation: four goroutines (three upstream
// pumps plus the receive loop) around one Conn. Events flow out of the
// channel returned by Start until the session ends; the channel closing is
// the terminal sentinel, and by then the connection is fully torn down.
type Session struct {
	id        string
	cfg       Config
	inputs    *Inputs
	registry  *tools.Registry
	dialer    Dialer
	callbacks Callbacks

	logger  zerolog.Logger
	metrics *observability.Metrics

	conn    Conn
	events  chan Event
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	runErr  error
}

// NewSession assembles a session around injected dependencies. The id tags
// every log line and metric for correlation with the owning client
// connection.
func NewSession(id string, cfg Config, inputs *Inputs, registry *tools.Registry, dialer Dialer, callbacks Callbacks) *Session {
	return &Session{
		id:        id,
		cfg:       cfg,
		inputs:    inputs,
		registry:  registry,
		dialer:    dialer,
		callbacks: callbacks,
		logger:    observability.WithSessionID(id),
		metrics:   observability.NewSessionMetrics(id),
		done:      make(chan struct{}),
	}
}

// ID returns the session's correlation ID.
func (s *Session) ID() string { return s.id }

// Start dials the live connection and launches the coordinator goroutines.
// The returned channel yields events until the session ends and is closed
// only after all goroutines have stopped and the connection is closed, so a
// consumer that drains it observes complete teardown.
func (s *Session) Start(ctx context.Context) (<-chan Event, error) {
	if s.started {
		return nil, ErrAlreadyStarted
	}

	conn, err := s.dialer.Dial(ctx, s.cfg, s.registry.Definitions())
	if err != nil {
		return nil, fmt.Errorf("dial live connection: %w", err)
	}
	s.conn = conn
	s.started = true
	s.events = make(chan Event, eventQueueSize)

	sctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error { return s.pumpAudio(gctx) })
	g.Go(func() error { return s.pumpVideo(gctx) })
	g.Go(func() error { return s.pumpText(gctx) })
	g.Go(func() error {
		// The receive loop ending, for any reason, ends the session.
		defer cancel()
		return s.receiveLoop(gctx)
	})

	s.metrics.RecordSessionStart()
	s.logger.Info().
		Str("model", s.cfg.Model).
		Str("voice", s.cfg.Voice).
		Int("tools", s.registry.Len()).
		Msg("Live session started")

	go func() {
		// All four goroutines must be finished before the connection is
		// closed; nothing may touch a closed connection during teardown.
		err := g.Wait()
		if err != nil && !errors.Is(err, context.Canceled) {
			s.runErr = err
			s.logger.Error().Err(err).Msg("Live session ended with error")
		}
		if cerr := conn.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("Closing live connection failed")
		}
		close(s.events)
		s.metrics.RecordSessionEnd()
		s.logger.Info().Msg("Live session closed")
		close(s.done)
	}()

	return s.events, nil
}

// Close cancels the session and blocks until teardown (goroutine join, then
// connection close, then event channel close) completes. It is idempotent
// and returns the error the session ended with, if any.
func (s *Session) Close() error {
	if !s.started {
		return nil
	}
	s.cancel()
	<-s.done
	return s.runErr
}

// emit delivers one event to the consumer. It gives up when the session
// context ends so teardown never blocks behind a departed consumer.
func (s *Session) emit(ctx context.Context, ev Event) {
	select {
	case s.events <- ev:
		s.metrics.RecordEvent(ev.EventType())
	case <-ctx.Done():
	}
}
