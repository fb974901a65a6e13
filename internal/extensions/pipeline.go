// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extensions

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

// Hook names used in logs.
const (
	HookUserInput     = "on_user_input"
	HookBeforeRequest = "before_request"
	HookStreamDelta   = "on_stream_delta"
	HookAfterResponse = "after_response"
)

var errNilMessages = errors.New("returned nil message list")

// Pipeline runs extension hooks in load order.
//
// Pipeline is not safe for concurrent use; the chat loop runs one turn at
// a time.
type Pipeline struct {
	exts    []chatext.Extension
	log     *zap.Logger
	ignored int
}

// NewPipeline returns a pipeline over exts. A nil logger disables logging.
func NewPipeline(exts []chatext.Extension, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{exts: slices.Clone(exts), log: log.Named("extensions")}
}

// Names returns the extension names in load order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.exts))
	for i, ext := range p.exts {
		names[i] = ext.Name
	}
	return names
}

// Len returns the number of extensions.
func (p *Pipeline) Len() int {
	return len(p.exts)
}

// Ignored returns the total number of skipped hook invocations.
func (p *Pipeline) Ignored() int {
	return p.ignored
}

// UserInput applies every OnUserInput hook to text.
func (p *Pipeline) UserInput(text string, cctx *chatext.Context) (string, int) {
	return runText(p, HookUserInput, text, cctx, func(ext chatext.Extension) textHook {
		return ext.OnUserInput
	})
}

// StreamDelta applies every OnStreamDelta hook to one streamed fragment.
func (p *Pipeline) StreamDelta(delta string, cctx *chatext.Context) (string, int) {
	return runText(p, HookStreamDelta, delta, cctx, func(ext chatext.Extension) textHook {
		return ext.OnStreamDelta
	})
}

// AfterResponse applies every AfterResponse hook to the assembled reply.
func (p *Pipeline) AfterResponse(text string, cctx *chatext.Context) (string, int) {
	return runText(p, HookAfterResponse, text, cctx, func(ext chatext.Extension) textHook {
		return ext.AfterResponse
	})
}

// BeforeRequest applies every BeforeRequest hook to the outgoing message
// list. Each hook receives its own copy, so a skipped hook cannot leave
// partial edits behind.
func (p *Pipeline) BeforeRequest(msgs []chatext.Message, cctx *chatext.Context) ([]chatext.Message, int) {
	out := msgs
	skipped := 0
	for _, ext := range p.exts {
		if ext.BeforeRequest == nil {
			continue
		}
		var res []chatext.Message
		err := p.invoke(ext.Name, HookBeforeRequest, func() error {
			var herr error
			res, herr = ext.BeforeRequest(slices.Clone(out), cctx)
			if herr == nil && res == nil {
				herr = errNilMessages
			}
			return herr
		})
		if err != nil {
			skipped++
			continue
		}
		out = res
	}
	return out, skipped
}

type textHook = func(string, *chatext.Context) (string, error)

// runText is the shared loop of the three string-valued chains.
func runText(p *Pipeline, hook, value string, cctx *chatext.Context, pick func(chatext.Extension) textHook) (string, int) {
	out := value
	skipped := 0
	for _, ext := range p.exts {
		fn := pick(ext)
		if fn == nil {
			continue
		}
		var res string
		err := p.invoke(ext.Name, hook, func() error {
			var herr error
			res, herr = fn(out, cctx)
			return herr
		})
		if err != nil {
			skipped++
			continue
		}
		out = res
	}
	return out, skipped
}

// invoke calls fn, converting a panic into an error. Failures are logged
// and counted.
func (p *Pipeline) invoke(name, hook string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			p.ignored++
			p.log.Warn("extension hook result ignored",
				zap.String("extension", name),
				zap.String("hook", hook),
				zap.Error(err))
		}
	}()
	return fn()
}
