package audio

// MimePreferences is the order in which recorder container types are tried
var MimePreferences = []string{
	"audio/webm;codecs=opus",
	"audio/webm",
	"audio/ogg;codecs=opus",
	"audio/mp4",
	"audio/aac",
	"audio/wav",
}

// MimeWAV is the only container the server side encoder produces
const MimeWAV = "audio/wav"

// SelectMimeType returns the first preference accepted by supported,
// or an empty string when none is
func SelectMimeType(supported func(string) bool) string {
	for _, m := range MimePreferences {
		if supported(m) {
			return m
		}
	}
	return ""
}

// ServerEncoderSupports reports what EncodeWAV can produce
func ServerEncoderSupports(mime string) bool {
	return mime == MimeWAV
}
