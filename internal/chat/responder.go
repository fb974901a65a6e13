// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat executes single request/response turns against the
// completion API.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/r9s-ai/r9s-cli/internal/cloud"
	"github.com/r9s-ai/r9s-cli/internal/extensions"
	"github.com/r9s-ai/r9s-cli/internal/ui/components"
	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

// Completer is the completion client used by a Responder.
type Completer interface {
	Complete(ctx context.Context, model string, messages []chatext.Message) (*cloud.Message, error)
	CompleteStream(ctx context.Context, model string, messages []chatext.Message) (*cloud.Stream, error)
}

// Renderer formats a buffered reply for display. The returned text is
// printed as is; history keeps the unrendered reply.
type Renderer func(text string) string

// Result is the outcome of one turn.
type Result struct {
	// Text is the assistant reply after AfterResponse hooks.
	Text string

	// Usage is reported by the service, when available.
	Usage *cloud.Usage

	// Ignored counts hook invocations skipped during the turn.
	Ignored int
}

// Responder runs one turn in streaming or buffered mode.
type Responder struct {
	Client   Completer
	Pipeline *extensions.Pipeline
	Out      io.Writer

	// Stream selects streaming mode.
	Stream bool

	// Interactive enables the spinner; set it when Out is a terminal.
	Interactive bool

	// Render, if set, formats buffered replies for display.
	Render Renderer

	Log *zap.Logger
}

func (r *Responder) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Responder) pipeline() *extensions.Pipeline {
	if r.Pipeline == nil {
		return extensions.NewPipeline(nil, r.Log)
	}
	return r.Pipeline
}

// Run sends messages and prints the reply to Out. label is printed once
// before the reply; pass "" to print the reply bare.
func (r *Responder) Run(ctx context.Context, model string, messages []chatext.Message, cctx *chatext.Context, label string) (Result, error) {
	if r.Stream {
		return r.runStream(ctx, model, messages, cctx, label)
	}
	return r.runBuffered(ctx, model, messages, cctx, label)
}

// runStream prints each transformed fragment as it arrives. The spinner
// owns Out until the first fragment (or the end of the stream).
func (r *Responder) runStream(ctx context.Context, model string, messages []chatext.Message, cctx *chatext.Context, label string) (Result, error) {
	p := r.pipeline()
	sp := components.NewSpinner(r.Out, label, r.Interactive).WithLogger(r.Log)
	sp.Start()
	defer sp.Stop()

	stream, err := r.Client.CompleteStream(ctx, model, messages)
	if err != nil {
		sp.Stop()
		r.finishLine(sp, false)
		return Result{}, err
	}
	defer stream.Close()

	var (
		res     Result
		text    strings.Builder
		printed bool
	)
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sp.Stop()
			r.finishLine(sp, printed)
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			res.Text = text.String()
			return res, err
		}
		if chunk.Usage != nil {
			res.Usage = chunk.Usage
		}
		if chunk.Content == "" {
			continue
		}

		sp.Stop()
		piece, n := p.StreamDelta(chunk.Content, cctx)
		res.Ignored += n
		text.WriteString(piece)
		if !printed {
			sp.PrintLabel()
			printed = true
		}
		if _, err := io.WriteString(r.Out, piece); err != nil {
			return res, fmt.Errorf("write reply: %w", err)
		}
	}

	sp.Stop()
	sp.PrintLabel()
	fmt.Fprintln(r.Out)

	final, n := p.AfterResponse(text.String(), cctx)
	res.Ignored += n
	res.Text = final
	if res.Usage != nil {
		r.logger().Debug("stream usage",
			zap.Int("prompt_tokens", res.Usage.PromptTokens),
			zap.Int("completion_tokens", res.Usage.CompletionTokens))
	}
	return res, nil
}

// finishLine ends a partially written reply line so the next message
// starts on a fresh line.
func (r *Responder) finishLine(sp *components.Spinner, printed bool) {
	if printed || sp.LabelShown() {
		fmt.Fprintln(r.Out)
	}
}

// runBuffered waits for the complete reply, applies AfterResponse, then
// prints it.
func (r *Responder) runBuffered(ctx context.Context, model string, messages []chatext.Message, cctx *chatext.Context, label string) (Result, error) {
	msg, err := r.Client.Complete(ctx, model, messages)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return Result{}, err
	}

	final, n := r.pipeline().AfterResponse(msg.Content.Text(), cctx)

	display := final
	if r.Render != nil {
		display = r.Render(final)
	}
	if label != "" {
		io.WriteString(r.Out, label)
	}
	if _, err := io.WriteString(r.Out, strings.TrimRight(display, "\n")+"\n"); err != nil {
		return Result{Text: final, Ignored: n}, fmt.Errorf("write reply: %w", err)
	}
	return Result{Text: final, Ignored: n}, nil
}
