// Package voice picks a synthesis voice and wraps the synthesizer behind a
// fire-and-forget speaker.
package voice

import (
	"regexp"

	"github.com/chaitudev/lyra/domain/repositories"
)

var (
	// Regional locales LYRA prefers, in engine order.
	regionalLocale = regexp.MustCompile(`(?i)^(en-IN|hi-IN|mr-IN)`)
	// Fallback: voices whose display name sounds feminine across the
	// common desktop/mobile engines.
	feminineName = regexp.MustCompile(`(?i)(female|woman|zira|veena|heera|kalpana|priya|neerja|samantha|victoria|karen|moira|tessa)`)
)

// Select chooses a voice from the engine's inventory: first regional-locale
// match, else first feminine-sounding name, else the first voice. Returns
// nil when the list is empty. Engines populate their lists asynchronously,
// so callers re-run Select whenever the inventory refreshes.
func Select(voices []repositories.Voice) *repositories.Voice {
	if len(voices) == 0 {
		return nil
	}

	for i := range voices {
		if regionalLocale.MatchString(voices[i].Language) {
			return &voices[i]
		}
	}

	for i := range voices {
		if feminineName.MatchString(voices[i].Name) {
			return &voices[i]
		}
	}

	return &voices[0]
}
