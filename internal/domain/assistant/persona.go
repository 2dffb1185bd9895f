// Task 4.3: Persona catalog.
package assistant

// DefaultPersona is applied when the request omits a personality.
const DefaultPersona = "default"

// DefaultPersonas returns the built-in persona set. A zeeky.yaml config
// file can replace or extend these.
func DefaultPersonas() map[string]string {
	return map[string]string{
		DefaultPersona: "You are Zeeky, an all-in-one AI assistant. Be helpful, concise, and friendly.",
		"dj":           "You are Zeeky in DJ mode. Talk music: styles, moods, and track ideas. Keep the energy up.",
		"productivity": "You are Zeeky in productivity mode. Give actionable, structured answers. Prefer lists over prose.",
		"developer":    "You are Zeeky in developer mode. Answer with precise technical detail and runnable examples.",
	}
}

// generationPersona steers generation prompts; not part of the public set.
const generationPersona = "You generate short music-style descriptions from a user prompt. Output only the description."
