package config

import "slices"

// Effect types applied to background clips.
var EffectTypes = []string{"subtle", "cinematic", "warm", "cool"}

// Transition types used between background clips.
var TransitionTypes = []string{"crossfade", "slide", "zoom"}

// Text overlay styles available to the renderer.
var TextStyles = []string{"modern", "elegant", "bold", "minimal", "vibrant"}

// Text animations available to the renderer.
var TextAnimations = []string{"fade", "slide", "zoom"}

// Reddit listing windows accepted by the top endpoint.
var TimeFilters = []string{"hour", "day", "week", "month", "year", "all"}

var logFormats = []string{"console", "json"}

var logLevels = []string{"debug", "info", "warn", "error"}

// Voice describes one Kokoro voice.
type Voice struct {
	ID     string
	Name   string
	Accent string
	Gender string
}

// Voices is the Kokoro voice catalog accepted by reels.voice and reels.voice_pool.
var Voices = []Voice{
	{ID: "af_heart", Name: "heart", Accent: "american", Gender: "female"},
	{ID: "af_bella", Name: "bella", Accent: "american", Gender: "female"},
	{ID: "af_sarah", Name: "sarah", Accent: "american", Gender: "female"},
	{ID: "af_nicole", Name: "nicole", Accent: "american", Gender: "female"},
	{ID: "am_adam", Name: "adam", Accent: "american", Gender: "male"},
	{ID: "am_michael", Name: "michael", Accent: "american", Gender: "male"},
	{ID: "bf_emma", Name: "emma", Accent: "british", Gender: "female"},
	{ID: "bf_isabella", Name: "isabella", Accent: "british", Gender: "female"},
	{ID: "bm_lewis", Name: "lewis", Accent: "british", Gender: "male"},
	{ID: "bm_george", Name: "george", Accent: "british", Gender: "male"},
}

// VoiceIDs returns the catalog identifiers in catalog order.
func VoiceIDs() []string {
	ids := make([]string, 0, len(Voices))
	for _, v := range Voices {
		ids = append(ids, v.ID)
	}
	return ids
}

// LookupVoice returns the catalog entry for id.
func LookupVoice(id string) (Voice, bool) {
	for _, v := range Voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

func oneOf(value string, allowed []string) bool {
	return slices.Contains(allowed, value)
}
