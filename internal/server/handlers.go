package server

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/job"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/project"
	"github.com/Jungsungyoung/whisper-obsidian/internal/settings"
)

type jobsHandler struct {
	registry *job.Registry
}

type JobIDInput struct {
	JobID string `path:"job_id" doc:"Job ID"`
}

type JobStatusOutput struct {
	Body job.Record
}

func (h *jobsHandler) Status(_ context.Context, input *JobIDInput) (*JobStatusOutput, error) {
	rec, ok := h.registry.Get(input.JobID)
	if !ok {
		return nil, huma.Error404NotFound("Job not found")
	}
	return &JobStatusOutput{Body: rec}, nil
}

type OKBody struct {
	OK bool `json:"ok" doc:"Operation result"`
}

type OKOutput struct {
	Body OKBody
}

func (h *jobsHandler) Cancel(_ context.Context, input *JobIDInput) (*OKOutput, error) {
	if err := h.registry.RequestCancel(input.JobID); err != nil {
		return nil, huma.Error404NotFound("Job not found")
	}
	return &OKOutput{Body: OKBody{OK: true}}, nil
}

type ConfirmInput struct {
	JobID string `path:"job_id" doc:"Job ID"`
	Body  struct {
		Analysis   map[string]any    `json:"analysis,omitempty" doc:"Edited analysis, field name to string or string list"`
		SpeakerMap map[string]string `json:"speaker_map,omitempty" doc:"Speaker label to display name"`

		// Older review panels send discrete meeting fields instead of the
		// analysis object.
		Purpose     string   `json:"purpose,omitempty"`
		Discussion  []string `json:"discussion,omitempty"`
		Decisions   []string `json:"decisions,omitempty"`
		ActionItems []string `json:"action_items,omitempty"`
		FollowUp    []string `json:"follow_up,omitempty"`
	}
}

func (h *jobsHandler) Confirm(_ context.Context, input *ConfirmInput) (*OKOutput, error) {
	analysis := input.Body.Analysis
	if len(analysis) == 0 {
		analysis = foldLegacyFields(input.Body.Purpose, input.Body.Discussion,
			input.Body.Decisions, input.Body.ActionItems, input.Body.FollowUp)
	}

	err := h.registry.Confirm(input.JobID, job.ReviewEdit{
		Analysis:   analysis,
		SpeakerMap: input.Body.SpeakerMap,
	})
	switch {
	case errors.Is(err, job.ErrNotFound):
		return nil, huma.Error404NotFound("Job not found")
	case errors.Is(err, job.ErrNotReview):
		return nil, huma.Error400BadRequest("Job is not in review state")
	case err != nil:
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &OKOutput{Body: OKBody{OK: true}}, nil
}

// foldLegacyFields merges non-empty discrete meeting fields into one analysis
// replacement map.
func foldLegacyFields(purpose string, discussion, decisions, actionItems, followUp []string) map[string]any {
	out := map[string]any{}
	if purpose != "" {
		out["purpose"] = purpose
	}
	for key, list := range map[string][]string{
		"discussion":   discussion,
		"decisions":    decisions,
		"action_items": actionItems,
		"follow_up":    followUp,
	} {
		if len(list) > 0 {
			out[key] = list
		}
	}
	return out
}

type projectsHandler struct {
	scanner *project.Scanner
}

type ProjectsOutput struct {
	Body []project.Project
}

func (h *projectsHandler) List(_ context.Context, _ *struct{}) (*ProjectsOutput, error) {
	return &ProjectsOutput{Body: h.scanner.Active()}, nil
}

type settingsHandler struct {
	store *settings.Store
}

type SettingsOutput struct {
	Body map[string]string
}

func (h *settingsHandler) Get(_ context.Context, _ *struct{}) (*SettingsOutput, error) {
	values, err := h.store.Read()
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &SettingsOutput{Body: values}, nil
}

type SaveSettingsInput struct {
	Body struct {
		WhisperModel    string `json:"WHISPER_MODEL,omitempty"`
		GeminiAPIKey    string `json:"GEMINI_API_KEY,omitempty"`
		OpenAIAPIKey    string `json:"OPENAI_API_KEY,omitempty"`
		HFToken         string `json:"HF_TOKEN,omitempty"`
		VaultPath       string `json:"VAULT_PATH,omitempty"`
		MeetingsFolder  string `json:"MEETINGS_FOLDER,omitempty"`
		InboxFolder     string `json:"INBOX_FOLDER,omitempty"`
		DailyFolder     string `json:"DAILY_FOLDER,omitempty"`
		AreasFolder     string `json:"AREAS_FOLDER,omitempty"`
		ProjectsFolder  string `json:"PROJECTS_FOLDER,omitempty"`
		ResourcesFolder string `json:"RESOURCES_FOLDER,omitempty"`
		DomainVocab     string `json:"DOMAIN_VOCAB,omitempty"`
	}
}

func (h *settingsHandler) Save(_ context.Context, input *SaveSettingsInput) (*OKOutput, error) {
	updates := map[string]string{
		"WHISPER_MODEL":    input.Body.WhisperModel,
		"GEMINI_API_KEY":   input.Body.GeminiAPIKey,
		"OPENAI_API_KEY":   input.Body.OpenAIAPIKey,
		"HF_TOKEN":         input.Body.HFToken,
		"VAULT_PATH":       input.Body.VaultPath,
		"MEETINGS_FOLDER":  input.Body.MeetingsFolder,
		"INBOX_FOLDER":     input.Body.InboxFolder,
		"DAILY_FOLDER":     input.Body.DailyFolder,
		"AREAS_FOLDER":     input.Body.AreasFolder,
		"PROJECTS_FOLDER":  input.Body.ProjectsFolder,
		"RESOURCES_FOLDER": input.Body.ResourcesFolder,
		"DOMAIN_VOCAB":     input.Body.DomainVocab,
	}
	if err := h.store.Write(updates); err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return &OKOutput{Body: OKBody{OK: true}}, nil
}
