package shout

import (
	"strings"

	"github.com/r9s-ai/r9s-cli/pkg/chatext"
)

var Extension = chatext.Extension{
	Name: "shout",
	AfterResponse: func(text string, _ *chatext.Context) (string, error) {
		return strings.ToUpper(text), nil
	},
}
