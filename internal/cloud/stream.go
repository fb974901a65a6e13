// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// =============================================================================
// STREAMING CONSTANTS
// =============================================================================

// MaxChunkSize is the maximum allowed size for a single SSE line.
const MaxChunkSize = 1024 * 1024

// doneMarker terminates an OpenAI-compatible event stream.
var doneMarker = []byte("[DONE]")

// =============================================================================
// STREAMING TYPES
// =============================================================================

// Chunk is one unit of a streaming completion. Content is empty for
// chunks that carry no text. Usage is only set on the terminal chunk.
type Chunk struct {
	Content      string
	FinishReason string
	Usage        *Usage
}

// streamEvent is the wire form of one SSE data payload.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage           `json:"usage"`
	Error *json.RawMessage `json:"error,omitempty"`
}

// StreamError reports a failure in the middle of a stream.
type StreamError struct {
	Err error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{reader: bufio.NewReaderSize(r, 64*1024)}
}

// ReadEvent reads the next SSE event and returns its type and data.
// Multiple data lines are joined with "\n". Returns io.EOF when the
// stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte
	size := 0

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return "", nil, err
		}
		if err == io.EOF && len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, io.EOF
		}

		size += len(line)
		if size > MaxChunkSize {
			return "", nil, fmt.Errorf("sse event exceeds %d bytes", MaxChunkSize)
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			if err == io.EOF {
				return "", nil, io.EOF
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			data := line[len("data:"):]
			if len(data) > 0 && data[0] == ' ' {
				data = data[1:]
			}
			dataLines = append(dataLines, append([]byte(nil), data...))
		}
		// id:, retry: and ":" comments are ignored.

		if err == io.EOF {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, io.EOF
		}
	}
}

// =============================================================================
// STREAM
// =============================================================================

// Stream is an ordered, finite, non-restartable sequence of chunks.
type Stream struct {
	body      io.ReadCloser
	sse       *SSEReader
	done      bool
	closeOnce sync.Once
}

// NewStream reads chunks from an SSE body.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{body: body, sse: NewSSEReader(body)}
}

// Recv returns the next chunk. It returns io.EOF after the final chunk.
func (s *Stream) Recv() (Chunk, error) {
	for {
		if s.done {
			return Chunk{}, io.EOF
		}

		_, data, err := s.sse.ReadEvent()
		if err == io.EOF {
			s.done = true
			return Chunk{}, io.EOF
		}
		if err != nil {
			s.done = true
			return Chunk{}, &StreamError{Err: err}
		}

		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		if bytes.Equal(data, doneMarker) {
			s.done = true
			return Chunk{}, io.EOF
		}

		var ev streamEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.done = true
			return Chunk{}, &StreamError{Err: fmt.Errorf("decode chunk: %w", err)}
		}
		if ev.Error != nil {
			s.done = true
			return Chunk{}, &StreamError{Err: streamPayloadError(*ev.Error)}
		}

		var chunk Chunk
		if len(ev.Choices) > 0 {
			chunk.Content = ev.Choices[0].Delta.Content
			if fr := ev.Choices[0].FinishReason; fr != nil {
				chunk.FinishReason = *fr
			}
		}
		chunk.Usage = ev.Usage
		return chunk, nil
	}
}

// Close releases the underlying connection. It is safe to call more than
// once.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.done = true
		err = s.body.Close()
	})
	return err
}

func streamPayloadError(raw json.RawMessage) error {
	var payload struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return &APIError{Code: errorCode(payload.Code), Message: payload.Message}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &APIError{Message: s}
	}
	return &APIError{Message: string(raw)}
}
