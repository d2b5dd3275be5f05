package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
)

const Delimiter = '\n'

type envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Encode renders msg as one newline-terminated frame.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("failed to encode: %w", apperror.ErrUnknownMessageType)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s data: %w", msg.Type(), err)
	}

	frame, err := json.Marshal(envelope{Type: msg.Type(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s envelope: %w", msg.Type(), err)
	}

	return append(frame, Delimiter), nil
}

// Decode parses one frame. A trailing delimiter is allowed.
func Decode(frame []byte) (Message, error) {
	frame = bytes.TrimRight(frame, "\r\n")

	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedFrame, err)
	}

	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", apperror.ErrMalformedFrame)
	}

	switch env.Type {
	case TypeJoin:
		return decodeData[Join](env.Data, "player_name")
	case TypeQueueStatus:
		return decodeData[QueueStatus](env.Data, "position", "total_waiting")
	case TypeMatchFound:
		return decodeData[MatchFound](env.Data, "session_id", "seat_number", "opponent_name")
	case TypeMove:
		return decodeData[Move](env.Data, "session_id", "seat_number", "row", "col")
	case TypeGameState:
		return decodeData[GameState](env.Data, "session_id", "board", "turn_seat", "finished", "winner_seat")
	case TypeMoveRejected:
		return decodeData[MoveRejected](env.Data, "reason")
	case TypeGameEnd:
		return decodeData[GameEnd](env.Data, "session_id", "winner_seat", "reason")
	case TypeOpponentLeft:
		return decodeData[OpponentLeft](env.Data, "session_id")
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownMessageType, env.Type)
	}
}

func decodeData[T Message](data json.RawMessage, required ...string) (Message, error) {
	var msg T

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s data: %w", apperror.ErrMalformedFrame, msg.Type(), err)
	}

	if fields == nil {
		return nil, fmt.Errorf("%w: %s without data", apperror.ErrMalformedFrame, msg.Type())
	}

	for _, name := range required {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%w: %s missing %q", apperror.ErrMalformedFrame, msg.Type(), name)
		}
	}

	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %s data: %w", apperror.ErrMalformedFrame, msg.Type(), err)
	}

	return msg, nil
}

// FrameReader splits a byte stream into frames, buffering partial reads.
// A frame longer than maxSize is discarded and reported as ErrFrameTooLarge;
// the stream stays usable.
type FrameReader struct {
	reader  *bufio.Reader
	maxSize int
}

func NewFrameReader(r io.Reader, maxSize int) *FrameReader {
	return &FrameReader{
		reader:  bufio.NewReader(r),
		maxSize: maxSize,
	}
}

// ReadFrame returns the next non-empty frame without its delimiter.
func (that *FrameReader) ReadFrame() ([]byte, error) {
	for {
		frame, err := that.readLine()
		if err != nil {
			return nil, err
		}

		if len(bytes.TrimSpace(frame)) == 0 {
			continue
		}

		return frame, nil
	}
}

func (that *FrameReader) readLine() ([]byte, error) {
	var frame []byte
	oversized := false

	for {
		chunk, err := that.reader.ReadSlice(Delimiter)

		if !oversized {
			frame = append(frame, chunk...)
			if len(bytes.TrimRight(frame, "\r\n")) > that.maxSize {
				oversized = true
				frame = nil
			}
		}

		switch {
		case err == nil:
			if oversized {
				return nil, fmt.Errorf("%w: limit %d bytes", apperror.ErrFrameTooLarge, that.maxSize)
			}
			return bytes.TrimRight(frame, "\r\n"), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && !oversized && len(frame) > 0:
			// last frame of the stream without a delimiter
			return frame, nil
		default:
			return nil, err
		}
	}
}
