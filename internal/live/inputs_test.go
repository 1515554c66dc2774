package live

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/homescan/live-gateway/internal/observability"
)

func newTestInputs(audioSize, videoSize, textSize int) *Inputs {
	cfg := Config{
		AudioQueueSize: audioSize,
		VideoQueueSize: videoSize,
		TextQueueSize:  textSize,
	}
	return NewInputs(cfg, zerolog.Nop(), observability.NewSessionMetrics("test"))
}

func TestInputs_DropsWhenAudioQueueFull(t *testing.T) {
	in := newTestInputs(2, 0, 0)

	in.PushAudio([]byte{1})
	in.PushAudio([]byte{2})
	in.PushAudio([]byte{3}) // dropped, queue is full

	if got := len(in.audio); got != 2 {
		t.Errorf("Expected 2 queued chunks, got %d", got)
	}
	first := <-in.audio
	if len(first.Data) != 1 || first.Data[0] != 1 {
		t.Errorf("Expected oldest chunk preserved, got %v", first.Data)
	}
}

func TestInputs_ActivityMarkersShareAudioQueue(t *testing.T) {
	in := newTestInputs(4, 0, 0)

	in.PushActivityStart()
	in.PushAudio([]byte{0xFF})
	in.PushActivityEnd()

	item := <-in.audio
	if item.Activity != ActivityStart || item.Data != nil {
		t.Errorf("Expected activity start marker first, got %+v", item)
	}
	item = <-in.audio
	if item.Activity != ActivityNone || len(item.Data) != 1 {
		t.Errorf("Expected audio chunk second, got %+v", item)
	}
	item = <-in.audio
	if item.Activity != ActivityEnd {
		t.Errorf("Expected activity end marker third, got %+v", item)
	}
}

func TestInputs_DropsWhenTextQueueFull(t *testing.T) {
	in := newTestInputs(0, 0, 1)

	in.PushText("first")
	in.PushText("second") // dropped

	if got := len(in.text); got != 1 {
		t.Errorf("Expected 1 queued message, got %d", got)
	}
	if msg := <-in.text; msg != "first" {
		t.Errorf("Expected 'first', got %q", msg)
	}
}

func TestInputs_CloseIsIdempotent(t *testing.T) {
	in := newTestInputs(0, 0, 0)

	in.Close()
	in.Close() // second close must not panic

	if _, ok := <-in.audio; ok {
		t.Error("Expected audio queue closed")
	}
	if _, ok := <-in.video; ok {
		t.Error("Expected video queue closed")
	}
	if _, ok := <-in.text; ok {
		t.Error("Expected text queue closed")
	}
}

func TestInputs_DefaultCapacities(t *testing.T) {
	in := newTestInputs(0, 0, 0)

	if got := cap(in.audio); got != defaultAudioQueueSize {
		t.Errorf("Expected audio capacity %d, got %d", defaultAudioQueueSize, got)
	}
	if got := cap(in.video); got != defaultVideoQueueSize {
		t.Errorf("Expected video capacity %d, got %d", defaultVideoQueueSize, got)
	}
	if got := cap(in.text); got != defaultTextQueueSize {
		t.Errorf("Expected text capacity %d, got %d", defaultTextQueueSize, got)
	}
}

func TestInputs_QueuedItemsSurviveClose(t *testing.T) {
	in := newTestInputs(4, 0, 0)

	in.PushAudio([]byte{7})
	in.Close()

	item, ok := <-in.audio
	if !ok {
		t.Fatal("Expected queued chunk delivered before close takes effect")
	}
	if item.Data[0] != 7 {
		t.Errorf("Expected chunk 7, got %v", item.Data)
	}
	if _, ok := <-in.audio; ok {
		t.Error("Expected queue closed after draining")
	}
}
