package moderation

import "github.com/abadojack/whatlanggo"

// Unknown is reported when the text is too short or ambiguous to classify.
const Unknown = "und"

// Language returns the ISO 639-1 code of the language text is written in.
func Language(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return Unknown
	}
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return Unknown
}
