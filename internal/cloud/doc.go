// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud is the r9s completion client.
//
// It speaks the OpenAI-compatible chat completions API exposed by r9s
// gateways, in buffered and server-sent-events streaming modes.
//
// # Key Types
//
//   - Client: HTTP client bound to one base URL and API key
//   - Message: assistant message returned by a buffered completion
//   - Stream: ordered, finite sequence of Chunk values
//   - APIError: non-2xx response that does not map to a sentinel error
//
// # Usage
//
//	client := cloud.NewClient(baseURL, apiKey).WithLogger(log)
//	msg, err := client.Complete(ctx, "gpt-4o-mini", messages)
//
//	stream, err := client.CompleteStream(ctx, "gpt-4o-mini", messages)
//	defer stream.Close()
//	for {
//	    chunk, err := stream.Recv()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// API keys are never logged.
package cloud
