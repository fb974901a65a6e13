// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat sessions as JSON files.
//
// A session file holds one record:
//
//	{
//	  "meta": {
//	    "session_id": "20250101_120000_1a2b3c4d",
//	    "created_at": "2025-01-01T12:00:00+00:00",
//	    "updated_at": "2025-01-01T12:05:00+00:00",
//	    "base_url": "https://api.r9s.ai",
//	    "model": "gpt-4o-mini",
//	    "system_prompt": null
//	  },
//	  "messages": [{"role": "user", "content": "hi"}]
//	}
//
// A bare top-level array of messages is accepted as a legacy file and is
// upgraded in memory. Entries with an unknown role or non-text content are
// dropped on load and counted.
//
// # Usage
//
//	store := storage.NewSessionStore(root, logger)
//	rec, dropped, err := store.Load(path)
//	err = store.Save(path, rec)
//	sessions, err := store.List()
//
// Saves replace the file atomically.
package storage
