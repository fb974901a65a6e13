// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatext defines the extension ABI for r9s chat sessions.
//
// An extension is a named value with up to four optional hooks. Each hook
// receives the current running value and the chat context, and returns the
// replacement value. A nil hook leaves the value unchanged.
//
// A loadable unit (a .go source file, a Go plugin, or a built-in module)
// exposes its extensions through one of these top-level symbols, checked
// in order:
//
//	func Register(r *chatext.Registry)        // or func(*chatext.Registry) error
//	func GetExtension() chatext.Extension     // or *chatext.Extension
//	var EXTENSION chatext.Extension           // or *chatext.Extension
//	var Extension chatext.Extension           // or *chatext.Extension
//
// Example source extension:
//
//	package shout
//
//	import (
//		"strings"
//
//		"github.com/r9s-ai/r9s-cli/pkg/chatext"
//	)
//
//	var Extension = chatext.Extension{
//		Name: "shout",
//		AfterResponse: func(text string, _ *chatext.Context) (string, error) {
//			return strings.ToUpper(text), nil
//		},
//	}
package chatext

import (
	"errors"
	"fmt"
)

// Message roles accepted in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ValidRole reports whether role is one of the recognized message roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Message is one entry of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Context is passed to every hook invocation.
//
// History is the live conversation owned by the chat loop. Hooks may read
// it but must not modify it.
type Context struct {
	BaseURL      string
	Model        string
	SystemPrompt string
	HistoryFile  string
	History      []Message
}

// Hook signatures. A hook that returns an error is skipped and the
// running value is kept.
type (
	UserInputHook     func(text string, ctx *Context) (string, error)
	BeforeRequestHook func(messages []Message, ctx *Context) ([]Message, error)
	StreamDeltaHook   func(delta string, ctx *Context) (string, error)
	AfterResponseHook func(text string, ctx *Context) (string, error)
)

// Extension is a named set of optional hooks.
type Extension struct {
	Name string

	// OnUserInput transforms freshly entered user text before it is
	// appended to history.
	OnUserInput UserInputHook

	// BeforeRequest transforms the outgoing message list (system prompt
	// plus history). Returning a nil slice is treated as no result.
	BeforeRequest BeforeRequestHook

	// OnStreamDelta transforms each streamed content fragment before it
	// is printed and accumulated.
	OnStreamDelta StreamDeltaHook

	// AfterResponse transforms the assembled assistant text.
	AfterResponse AfterResponseHook
}

// ErrUnnamed is returned when an extension without a name is registered.
var ErrUnnamed = errors.New("extension must have a non-empty name")

// Registry collects extensions during a Register call.
type Registry struct {
	extensions []Extension
	err        error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends ext to the registry.
func (r *Registry) Add(ext Extension) error {
	if ext.Name == "" {
		err := fmt.Errorf("registry add: %w", ErrUnnamed)
		if r.err == nil {
			r.err = err
		}
		return err
	}
	r.extensions = append(r.extensions, ext)
	return nil
}

// Extensions returns the registered extensions in insertion order.
func (r *Registry) Extensions() []Extension {
	out := make([]Extension, len(r.extensions))
	copy(out, r.extensions)
	return out
}

// Err returns the first error recorded by Add.
func (r *Registry) Err() error {
	return r.err
}
