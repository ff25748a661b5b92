package strategy

import "strings"

// Tone labels form a closed set used for image styling. Unrecognized labels
// resolve to Professional.
const (
	ToneProfessional = "Professional"
	ToneUrgent       = "Urgent"
	ToneExcited      = "Excited"
	ToneSciFi        = "Sci-Fi"
	ToneCasual       = "Casual"
)

// toneStyles maps a tone label to the descriptive style phrase embedded in
// image prompts. Static lookup table, not derived data.
var toneStyles = map[string]string{
	ToneProfessional: "professional, clean, corporate, business-like",
	ToneUrgent:       "dramatic, urgent, breaking news, high impact, red theme",
	ToneExcited:      "energetic, vibrant, bullish, green theme, upward momentum",
	ToneSciFi:        "futuristic, cyberpunk, neon, high-tech, digital",
	ToneCasual:       "friendly, approachable, modern, minimalist",
}

// toneDirectives carry the full directive sentence handed verbatim to the
// text generation backend.
var toneDirectives = map[string]string{
	ToneExcited:      "Excited: The market is rallying! Write a high-energy update.",
	ToneUrgent:       "Urgent: The market is dropping! Write a cautionary, high-stakes update.",
	ToneProfessional: "Professional: Write a project update in a formal, corporate tone.",
	ToneCasual:       "Casual: Write a project update in a laid-back, conversational tone.",
}

// StyleFor returns the image style phrase for a tone label.
func StyleFor(label string) string {
	if style, ok := toneStyles[label]; ok {
		return style
	}
	return toneStyles[ToneProfessional]
}

// DirectiveFor returns the generation directive for a tone label, falling
// back to the label itself for manual free-form tones.
func DirectiveFor(label string) string {
	if d, ok := toneDirectives[label]; ok {
		return d
	}
	return label
}

// ToneLabel extracts the short label from a tone directive
// ("Excited: ..." -> "Excited").
func ToneLabel(tone string) string {
	label, _, _ := strings.Cut(tone, ":")
	return strings.TrimSpace(label)
}
