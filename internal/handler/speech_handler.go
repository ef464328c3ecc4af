package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"voxform/internal/domain"
	"voxform/internal/middleware"
	"voxform/internal/service"
)

// multipartOverhead is allowed on top of the audio limit for form boundaries and fields.
const multipartOverhead = 64 << 10

// SpeechHandler handles the extraction endpoints.
type SpeechHandler struct {
	formService   service.FormService
	maxAudioBytes int64
}

// NewSpeechHandler creates a new SpeechHandler.
func NewSpeechHandler(formService service.FormService, maxAudioBytes int64) *SpeechHandler {
	return &SpeechHandler{formService: formService, maxAudioBytes: maxAudioBytes}
}

// ProcessText handles POST /api/v1/speech
// @Summary Extract form fields from text
// @Description Runs the text provider chain over one utterance and merges the result into the session form. When every provider fails the envelope carries EXTRACTION_FAILED with the unchanged form.
// @Tags speech
// @Accept json
// @Produce json
// @Param request body SpeechRequest true "Utterance"
// @Success 200 {object} Response{data=domain.ProcessResult} "Updated form"
// @Failure 400 {object} ErrorResponseBody "Empty or too long input, unknown backend"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Router /speech [post]
func (h *SpeechHandler) ProcessText(c *gin.Context) {
	var req SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "text is required")
		return
	}

	res, err := h.formService.ProcessText(c.Request.Context(), service.ProcessTextInput{
		SessionID: middleware.GetSessionID(c),
		Text:      req.Text,
		Backend:   req.Backend,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondResult(c, res)
}

// ProcessAudio handles POST /api/v1/speech/audio
// @Summary Extract form fields from a recording
// @Description Accepts a multipart "audio" file or a raw audio body and runs the audio provider chain.
// @Tags speech
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Recording (wav, mp3, webm, ogg, m4a)"
// @Param format formData string false "Audio format, inferred from the file when omitted"
// @Param backend formData string false "Restrict extraction to one configured provider"
// @Success 200 {object} Response{data=domain.ProcessResult} "Updated form"
// @Failure 400 {object} ErrorResponseBody "Missing or unsupported audio"
// @Failure 413 {object} ErrorResponseBody "Audio too large"
// @Router /speech/audio [post]
func (h *SpeechHandler) ProcessAudio(c *gin.Context) {
	if h.maxAudioBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxAudioBytes+multipartOverhead)
	}

	var (
		audio   []byte
		format  domain.AudioFormat
		backend string
		err     error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, ferr := c.Request.FormFile("audio")
		if ferr != nil {
			if isTooLarge(ferr) {
				HandleError(c, domain.ErrAudioTooLarge)
				return
			}
			RespondError(c, http.StatusBadRequest, "MISSING_AUDIO", "audio field is required")
			return
		}
		defer func() { _ = file.Close() }()
		audio, err = h.readLimited(file)
		format = detectFormat(c.PostForm("format"), header.Filename, header.Header.Get("Content-Type"))
		backend = c.PostForm("backend")
	} else {
		audio, err = h.readLimited(c.Request.Body)
		format = detectFormat(c.Query("format"), "", c.ContentType())
		backend = c.Query("backend")
	}
	if err != nil {
		if isTooLarge(err) {
			HandleError(c, domain.ErrAudioTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "INVALID_AUDIO", "could not read audio")
		return
	}

	res, err := h.formService.ProcessAudio(c.Request.Context(), service.ProcessAudioInput{
		SessionID: middleware.GetSessionID(c),
		Audio:     audio,
		Format:    format,
		Backend:   backend,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondResult(c, res)
}

func (h *SpeechHandler) readLimited(r io.Reader) ([]byte, error) {
	if h.maxAudioBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, h.maxAudioBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxAudioBytes {
		return nil, domain.ErrAudioTooLarge
	}
	return data, nil
}

func isTooLarge(err error) bool {
	var mbErr *http.MaxBytesError
	return errors.As(err, &mbErr) || errors.Is(err, domain.ErrAudioTooLarge)
}

// detectFormat prefers the explicit value, then the file extension, then the MIME type.
func detectFormat(explicit, filename, contentType string) domain.AudioFormat {
	if explicit = strings.ToLower(strings.TrimSpace(explicit)); explicit != "" {
		return domain.AudioFormat(explicit)
	}
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")); ext != "" {
		if f := domain.AudioFormat(ext); f.IsValid() {
			return f
		}
	}
	if f, ok := domain.AudioFormatFromContentType(strings.ToLower(contentType)); ok {
		return f
	}
	return ""
}
