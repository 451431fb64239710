package config

import (
	"github.com/knadh/koanf/v2"
)

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"server.host": "0.0.0.0",
		"server.port": 8000,

		"upload.max_bytes": int64(512 << 20),

		"vault.meetings_folder":  "10_Calendar/13_Meetings",
		"vault.inbox_folder":     "00_Inbox",
		"vault.daily_folder":     "10_Calendar/11_Daily",
		"vault.areas_folder":     "30_Areas",
		"vault.projects_folder":  "20_Projects",
		"vault.resources_folder": "40_Resources",

		"whisper.model":  "base",
		"whisper.python": "python3",

		"llm.gemini_model": "gemini-2.0-flash",
		"llm.openai_model": "gpt-4o-mini",

		"review.poll_interval": "500ms",

		"logging.level":  "info",
		"logging.format": "pretty",
	}

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}
