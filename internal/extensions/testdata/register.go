package tagger

import (
	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

// Register wins over the Extension variable below.
func Register(r *chatext.Registry) {
	r.Add(chatext.Extension{
		Name: "prefix",
		OnUserInput: func(text string, ctx *chatext.Context) (string, error) {
			return "[" + ctx.Model + "] " + text, nil
		},
	})
	r.Add(chatext.Extension{
		Name: "suffix",
		OnStreamDelta: func(delta string, _ *chatext.Context) (string, error) {
			return delta + "!", nil
		},
	})
}

var Extension = chatext.Extension{Name: "ignored"}
