package types

// ModelKind distinguishes the two inference directions served by the gateway.
type ModelKind string

const (
	KindSTT ModelKind = "stt"
	KindTTS ModelKind = "tts"
)

// ModelInfo represents a model known to the catalog or loaded into a worker.
type ModelInfo struct {
	// Stable identifier for the model.
	// example: kokoro-v1
	ID string `json:"id" example:"kokoro-v1"`
	// Human-friendly name.
	// example: Kokoro v1 (82M)
	Name string `json:"name" example:"Kokoro v1 (82M)"`
	// Engine family executing this model (e.g., faster-whisper, kokoro).
	// example: kokoro
	Engine string `json:"engine" example:"kokoro"`
	// Model kind: stt or tts.
	// example: tts
	Kind ModelKind `json:"kind" example:"tts"`
	// Absolute path to the model files on disk.
	// example: /home/user/models/kokoro-v1
	Path string `json:"path" example:"/home/user/models/kokoro-v1"`
	// Optional upstream repository reference.
	// example: hexgrad/Kokoro-82M
	Repo string `json:"repo,omitempty" example:"hexgrad/Kokoro-82M"`
	// Optional free-form description.
	Description string `json:"description,omitempty"`
}

// TranscribeOptions carries per-request STT options resolved by the HTTP layer.
type TranscribeOptions struct {
	// Target model identifier. If empty, the server default is used.
	Model string `json:"model,omitempty" example:"whisper-base"`
	// Optional language hint passed through to the engine.
	Language string `json:"language,omitempty" example:"en"`
	// Response detail level: "text" or "segments".
	Detail string `json:"detail,omitempty" example:"segments"`
	// Correlation id; generated when the caller omits it.
	RequestID string `json:"request_id,omitempty"`
}

// Segment is one timed span of a transcription.
type Segment struct {
	ID int `json:"id"`
	// Start offset in seconds.
	// example: 0.0
	Start float64 `json:"start" example:"0.0"`
	// End offset in seconds.
	// example: 3.2
	End  float64 `json:"end" example:"3.2"`
	Text string  `json:"text"`
}

// Transcription is the terminal STT result.
type Transcription struct {
	// Full transcript text.
	Text string `json:"text"`
	// Detected or hinted language.
	// example: en
	Language string `json:"language,omitempty" example:"en"`
	// Audio duration in seconds as reported by the engine.
	// example: 12.8
	Duration float64 `json:"duration,omitempty" example:"12.8"`
	// Timed segments; present when detail=segments.
	Segments []Segment `json:"segments,omitempty"`
}

// SpeechRequest is a TTS synthesis request. Output is a streamed audio body.
type SpeechRequest struct {
	// Target model identifier. If empty, the server default is used.
	// example: kokoro-v1
	Model string `json:"model,omitempty" example:"kokoro-v1"`
	// Text to synthesize.
	// example: The quick brown fox jumps over the lazy dog.
	Input string `json:"input" example:"The quick brown fox jumps over the lazy dog."`
	// Optional voice name understood by the engine.
	// example: af_heart
	Voice string `json:"voice,omitempty" example:"af_heart"`
	// Output container; workers produce wav by default.
	// example: wav
	Format string `json:"format,omitempty" example:"wav"`
	// Correlation id; generated when the caller omits it.
	RequestID string `json:"request_id,omitempty"`
}
