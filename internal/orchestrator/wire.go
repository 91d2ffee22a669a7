package orchestrator

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"comicdesk/internal/appconfig"
	"comicdesk/internal/jobs"
)

// Metrics is the orchestrator's /metrics document, passed through untouched.
type Metrics map[string]any

// ConfigPatch is the POST /config payload.
type ConfigPatch struct {
	PrepConcurrency int    `json:"prep_concurrency"`
	OCRConcurrency  int    `json:"ocr_concurrency"`
	JobTimeoutS     int    `json:"job_timeout_s"`
	DefaultOCRLang  string `json:"default_ocr_lang"`
}

// PatchFromAppConfig maps the local record to the orchestrator wire schema.
// The orchestrator URL is client-side only and is not sent.
func PatchFromAppConfig(cfg appconfig.AppConfig) ConfigPatch {
	return ConfigPatch{
		PrepConcurrency: cfg.PrepConcurrency,
		OCRConcurrency:  cfg.OCRConcurrency,
		JobTimeoutS:     cfg.JobTimeoutSeconds,
		DefaultOCRLang:  cfg.DefaultOCRLang,
	}
}

// RuntimeConfig is the orchestrator's GET /config view. Servers that wrap the
// values in an "applied" object are accepted too.
type RuntimeConfig struct {
	ConfigPatch
}

func (r *RuntimeConfig) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Applied *ConfigPatch `json:"applied"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if envelope.Applied != nil {
		r.ConfigPatch = *envelope.Applied
		return nil
	}
	return json.Unmarshal(data, &r.ConfigPatch)
}

// wireJob tolerates missing fields, nulls, and numbers where strings are
// expected.
type wireJob struct {
	JobKey    flexString `json:"jobKey"`
	State     flexString `json:"state"`
	Stage     flexString `json:"stage"`
	Attempt   flexInt    `json:"attempt"`
	UpdatedAt flexString `json:"updatedAt"`
	InputName flexString `json:"inputName"`
}

func (w wireJob) toJob() jobs.Job {
	return jobs.Job{
		Key:       string(w.JobKey),
		State:     string(w.State),
		Stage:     string(w.Stage),
		Attempt:   strconv.Itoa(int(w.Attempt)),
		UpdatedAt: string(w.UpdatedAt),
		InputName: string(w.InputName),
	}
}

// decodeJobList maps each element of a /jobs array on its own. Elements that
// are not JSON objects are dropped and counted instead of failing the list.
func decodeJobList(elems []json.RawMessage) ([]jobs.Job, int) {
	list := make([]jobs.Job, 0, len(elems))
	skipped := 0
	for _, elem := range elems {
		elem = bytes.TrimSpace(elem)
		var w wireJob
		if len(elem) == 0 || elem[0] != '{' || json.Unmarshal(elem, &w) != nil {
			skipped++
			continue
		}
		list = append(list, w.toJob())
	}
	return list, skipped
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = flexString(value)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		*s = ""
	default:
		*s = flexString(data)
	}
	return nil
}

// flexInt accepts integers, floats, numeric strings, and null. Anything else
// decodes to zero.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
	}
	if value, err := strconv.Atoi(text); err == nil {
		*n = flexInt(value)
		return nil
	}
	if value, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(value) && !math.IsInf(value, 0) {
		*n = flexInt(int(value))
		return nil
	}
	*n = 0
	return nil
}
