package domain

// InputKind distinguishes the two extraction entry points.
type InputKind string

const (
	InputText  InputKind = "text"
	InputAudio InputKind = "audio"
)

// AttemptStatus is the outcome of one provider in a chain run.
type AttemptStatus string

const (
	AttemptSuccess AttemptStatus = "success"
	AttemptNoMatch AttemptStatus = "no_match"
	AttemptError   AttemptStatus = "error"
	AttemptSkipped AttemptStatus = "skipped"
)

// AudioFormat is the container of an uploaded recording.
type AudioFormat string

const (
	AudioWAV  AudioFormat = "wav"
	AudioMP3  AudioFormat = "mp3"
	AudioWebM AudioFormat = "webm"
	AudioOGG  AudioFormat = "ogg"
	AudioM4A  AudioFormat = "m4a"
)

var audioContentTypes = map[AudioFormat]string{
	AudioWAV:  "audio/wav",
	AudioMP3:  "audio/mpeg",
	AudioWebM: "audio/webm",
	AudioOGG:  "audio/ogg",
	AudioM4A:  "audio/mp4",
}

// ContentType returns the MIME type for the format.
func (f AudioFormat) ContentType() string {
	if ct, ok := audioContentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

func (f AudioFormat) IsValid() bool {
	_, ok := audioContentTypes[f]
	return ok
}

// AudioFormatFromContentType maps a MIME type (parameters ignored) to a format.
func AudioFormatFromContentType(ct string) (AudioFormat, bool) {
	switch {
	case hasPrefix(ct, "audio/wav"), hasPrefix(ct, "audio/x-wav"), hasPrefix(ct, "audio/wave"):
		return AudioWAV, true
	case hasPrefix(ct, "audio/mpeg"), hasPrefix(ct, "audio/mp3"):
		return AudioMP3, true
	case hasPrefix(ct, "audio/webm"):
		return AudioWebM, true
	case hasPrefix(ct, "audio/ogg"):
		return AudioOGG, true
	case hasPrefix(ct, "audio/mp4"), hasPrefix(ct, "audio/m4a"), hasPrefix(ct, "audio/x-m4a"):
		return AudioM4A, true
	}
	return "", false
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
