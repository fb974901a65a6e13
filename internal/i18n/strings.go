// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package i18n

var tables = map[string]map[string]string{
	English: {
		"cli.title":                     "r9s CLI",
		"cli.tagline":                   "Chat with r9s or manage bots.",
		"cli.examples.title":            "Common usage examples:",
		"cli.examples.chat_interactive": "  # Chat (interactive)\n  r9s chat --model \"$R9S_MODEL\"",
		"cli.examples.chat_pipe":        "  # Chat (pipe stdin)\n  echo \"hello\" | r9s chat --model \"$R9S_MODEL\"",
		"cli.examples.resume":           "  # Resume a session\n  r9s chat resume",
		"cli.examples.bots":             "  # Bots\n  r9s bot create mybot --model \"$R9S_MODEL\" --system-prompt \"You are a helpful assistant\"\n  r9s chat --bot mybot\n  r9s bot list",
		"cli.examples.more":             "Run 'r9s -h' to see all options.",

		"chat.title":                   "r9s chat",
		"chat.base_url":                "base_url",
		"chat.model":                   "model",
		"chat.system_prompt_set":       "system_prompt: (set)",
		"chat.extensions":              "extensions",
		"chat.commands.title":          "Commands:",
		"chat.commands.exit":           "  /exit   Exit",
		"chat.commands.clear":          "  /clear  Clear session history (does not delete history-file)",
		"chat.commands.help":           "  /help   Show help",
		"chat.prompt.user":             "You> ",
		"chat.prompt.assistant":        "Assistant> ",
		"chat.msg.history_cleared":     "Session history cleared.",
		"chat.msg.dropped":             "Skipped {count} malformed history entries in {path}.",
		"chat.msg.farewell":            "Goodbye. (Interrupted by Ctrl+C)",
		"chat.err.unknown_command":     "Unknown command: {cmd} (try /help)",
		"chat.err.missing_api_key":     "Missing API key: set R9S_API_KEY or pass --api-key",
		"chat.err.missing_model":       "Missing model: set R9S_MODEL or pass --model",
		"chat.err.history_not_json":    "History file is not valid JSON: {path} ({err})",
		"chat.err.history_shape":       "History file must be a JSON array or object: {path}",
		"chat.err.history_io":          "Cannot read history file: {path} ({err})",
		"chat.err.ext_load_file":       "Failed to load extension file: {path}",
		"chat.err.ext_contract":        "Extension must provide one of: Register(registry) / GetExtension() / EXTENSION / Extension",
		"chat.err.request":             "Request failed: {err}",
		"chat.err.resume_requires_tty": "Resume requires an interactive TTY (no stdin piping).",
		"chat.resume.none":             "No saved sessions found in: {dir}",
		"chat.resume.list":             "Sessions in: {dir}",
		"chat.resume.select":           "Select a session to resume (enter number): ",
		"chat.resume.invalid":          "Invalid selection, try again.",

		"bot.created":          "Saved bot {name}: {path}",
		"bot.deleted":          "Deleted bot {name}: {path}",
		"bot.none":             "No bots found.",
		"bot.not_found":        "Bot not found: {name}",
		"bot.delete.confirm":   "Delete bot {name}? [y/N] ",
		"bot.delete.cancelled": "Cancelled.",
		"bot.model_prompt":     "Model: ",
		"bot.model_empty":      "Model cannot be empty. Model: ",
		"bot.show.title":       "Bot: {name}",
		"bot.col.name":         "NAME",
		"bot.col.model":        "MODEL",
		"bot.col.base_url":     "BASE URL",
		"bot.col.extensions":   "EXTENSIONS",
	},
	SimplifiedChinese: {
		"cli.title":                     "r9s CLI",
		"cli.tagline":                   "与 r9s 对话或管理 bot。",
		"cli.examples.title":            "常用用法示例：",
		"cli.examples.chat_interactive": "  # 对话（交互）\n  r9s chat --model \"$R9S_MODEL\"",
		"cli.examples.chat_pipe":        "  # 对话（stdin 管道）\n  echo \"hello\" | r9s chat --model \"$R9S_MODEL\"",
		"cli.examples.resume":           "  # 恢复对话\n  r9s chat resume",
		"cli.examples.bots":             "  # Bots\n  r9s bot create mybot --model \"$R9S_MODEL\" --system-prompt \"你是一个严谨的助手\"\n  r9s chat --bot mybot\n  r9s bot list",
		"cli.examples.more":             "运行 'r9s -h' 查看全部选项。",

		"chat.title":                   "r9s chat",
		"chat.base_url":                "base_url",
		"chat.model":                   "model",
		"chat.system_prompt_set":       "system_prompt：（已设置）",
		"chat.extensions":              "extensions",
		"chat.commands.title":          "快捷命令：",
		"chat.commands.exit":           "  /exit   退出",
		"chat.commands.clear":          "  /clear  清空本次会话历史（不删除 history-file）",
		"chat.commands.help":           "  /help   帮助",
		"chat.prompt.user":             "You> ",
		"chat.prompt.assistant":        "Assistant> ",
		"chat.msg.history_cleared":     "已清空本次会话历史。",
		"chat.msg.dropped":             "已跳过 {path} 中 {count} 条格式错误的历史记录。",
		"chat.msg.farewell":            "再见。（已通过 Ctrl+C 中断）",
		"chat.err.unknown_command":     "未知命令: {cmd}（可用 /help）",
		"chat.err.missing_api_key":     "缺少 API key：请设置 R9S_API_KEY 或传入 --api-key",
		"chat.err.missing_model":       "缺少 model：请设置 R9S_MODEL 或传入 --model",
		"chat.err.history_not_json":    "history 文件不是合法 JSON: {path} ({err})",
		"chat.err.history_shape":       "history 文件必须是 JSON array 或 object: {path}",
		"chat.err.history_io":          "无法读取 history 文件: {path} ({err})",
		"chat.err.ext_load_file":       "无法加载扩展文件: {path}",
		"chat.err.ext_contract":        "扩展必须提供 Register(registry) / GetExtension() / EXTENSION / Extension 之一",
		"chat.err.request":             "请求失败: {err}",
		"chat.err.resume_requires_tty": "resume 需要交互式终端（不能通过 stdin 管道）。",
		"chat.resume.none":             "在此目录未找到可恢复会话: {dir}",
		"chat.resume.list":             "会话目录: {dir}",
		"chat.resume.select":           "选择要恢复的会话（输入编号）：",
		"chat.resume.invalid":          "选择无效，请重试。",

		"bot.created":          "已保存 bot {name}: {path}",
		"bot.deleted":          "已删除 bot {name}: {path}",
		"bot.none":             "没有 bot。",
		"bot.not_found":        "未找到 bot: {name}",
		"bot.delete.confirm":   "删除 bot {name}？[y/N] ",
		"bot.delete.cancelled": "已取消。",
		"bot.model_prompt":     "模型: ",
		"bot.model_empty":      "模型不能为空。模型: ",
		"bot.show.title":       "Bot: {name}",
	},
}
