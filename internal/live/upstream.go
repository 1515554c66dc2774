package live

import (
	"context"
	"fmt"
)

// pumpAudio forwards audio chunks and push-to-talk boundaries upstream in
// queue order: exactly one remote send per dequeued item.
func (s *Session) pumpAudio(ctx context.Context) error {
	mimeType := fmt.Sprintf("audio/pcm;rate=%d", s.cfg.InputSampleRate)

	for {
		select {
		case <-ctx.Done():
			return nil
		case item, ok := <-s.inputs.audio:
			if !ok {
				s.logger.Debug().Msg("Audio queue closed, stopping audio pump")
				return nil
			}
			if err := s.sendAudioItem(ctx, item, mimeType); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.metrics.RecordError("send_audio", "live")
				s.emit(ctx, &ErrorEvent{Err: err.Error()})
				return fmt.Errorf("send audio: %w", err)
			}
		}
	}
}

func (s *Session) sendAudioItem(ctx context.Context, item AudioInput, mimeType string) error {
	switch item.Activity {
	case ActivityStart:
		if !s.cfg.ManualActivity {
			return nil
		}
		return s.conn.SendActivityStart(ctx)
	case ActivityEnd:
		if !s.cfg.ManualActivity {
			return nil
		}
		return s.conn.SendActivityEnd(ctx)
	default:
		if err := s.conn.SendAudio(ctx, item.Data, mimeType); err != nil {
			return err
		}
		s.metrics.RecordAudioBytes("in", int64(len(item.Data)))
		return nil
	}
}

// pumpVideo forwards video frames upstream in queue order.
func (s *Session) pumpVideo(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-s.inputs.video:
			if !ok {
				s.logger.Debug().Msg("Video queue closed, stopping video pump")
				return nil
			}
			mimeType := frame.MIMEType
			if mimeType == "" {
				mimeType = "image/jpeg"
			}
			if err := s.conn.SendVideo(ctx, frame.Data, mimeType); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.metrics.RecordError("send_video", "live")
				s.emit(ctx, &ErrorEvent{Err: err.Error()})
				return fmt.Errorf("send video: %w", err)
			}
			s.metrics.RecordVideoFrame()
		}
	}
}

// pumpText forwards text messages upstream. Every message closes the user's
// turn; the empty string is a pure turn boundary and is sent as a single
// space because the remote side rejects empty content.
func (s *Session) pumpText(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case text, ok := <-s.inputs.text:
			if !ok {
				s.logger.Debug().Msg("Text queue closed, stopping text pump")
				return nil
			}
			content := text
			if content == "" {
				s.logger.Debug().Msg("Forwarding end-of-turn signal")
				content = " "
			}
			if err := s.conn.SendText(ctx, content, true); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.metrics.RecordError("send_text", "live")
				s.emit(ctx, &ErrorEvent{Err: err.Error()})
				return fmt.Errorf("send text: %w", err)
			}
		}
	}
}
