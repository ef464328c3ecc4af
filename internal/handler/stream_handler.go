package handler

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"voxform/internal/domain"
	"voxform/internal/logger"
	"voxform/internal/middleware"
	"voxform/internal/observe"
	"voxform/internal/service"
)

const streamWriteTimeout = 10 * time.Second

// StreamMessage is a client text frame on the streaming endpoint.
type StreamMessage struct {
	Type    string `json:"type,omitempty" example:"text"`
	Text    string `json:"text,omitempty" example:"My name is John Doe"`
	Backend string `json:"backend,omitempty" example:"ollama"`
}

// Stream message types. An empty type is treated as text.
const (
	StreamText  = "text"
	StreamForm  = "form"
	StreamReset = "reset"
)

// StreamHandler keeps one WebSocket per browser session. Text frames carry a
// StreamMessage, binary frames carry one recorded utterance. Every frame is
// answered with one envelope.
type StreamHandler struct {
	formService   service.FormService
	metrics       *observe.Metrics
	maxAudioBytes int64
	accept        websocket.AcceptOptions
}

// NewStreamHandler creates a new StreamHandler. allowedOrigins uses the CORS
// configuration; "*" disables the origin check.
func NewStreamHandler(formService service.FormService, metrics *observe.Metrics, maxAudioBytes int64, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		formService:   formService,
		metrics:       metrics,
		maxAudioBytes: maxAudioBytes,
		accept:        acceptOptions(allowedOrigins),
	}
}

func acceptOptions(origins []string) websocket.AcceptOptions {
	var opts websocket.AcceptOptions
	for _, o := range origins {
		if o == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			opts.OriginPatterns = append(opts.OriginPatterns, u.Host)
		} else {
			opts.OriginPatterns = append(opts.OriginPatterns, o)
		}
	}
	return opts
}

// Serve handles GET /api/v1/speech/stream
// @Summary Streaming extraction over WebSocket
// @Description Upgrades to a WebSocket. Send {"text": "..."} text frames or binary WAV frames; each is answered with the standard envelope.
// @Tags speech
// @Success 101 "Switching Protocols"
// @Router /speech/stream [get]
func (h *StreamHandler) Serve(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	opts := h.accept
	conn, err := websocket.Accept(c.Writer, c.Request, &opts)
	if err != nil {
		logger.Warn(c.Request.Context(), "stream.Serve: upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	if h.maxAudioBytes > 0 {
		conn.SetReadLimit(h.maxAudioBytes)
	}

	ctx := c.Request.Context()
	done := h.metrics.StreamOpened(ctx)
	defer done()
	logger.Debug(ctx, "stream.Serve: opened")

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			// CloseStatus is -1 when the read failed for a reason other than a close frame.
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				logger.Debug(ctx, "stream.Serve: read ended", "error", err)
			}
			return
		}

		resp := h.handleFrame(ctx, sessionID, typ, data)
		payload, err := json.Marshal(resp)
		if err != nil {
			logger.Error(ctx, "stream.Serve: marshal response", "error", err)
			_ = conn.Close(websocket.StatusInternalError, "encoding failed")
			return
		}
		wctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
		err = conn.Write(wctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			logger.Debug(ctx, "stream.Serve: write failed", "error", err)
			return
		}
	}
}

func (h *StreamHandler) handleFrame(ctx context.Context, sessionID string, typ websocket.MessageType, data []byte) APIResponse {
	if typ == websocket.MessageBinary {
		res, err := h.formService.ProcessAudio(ctx, service.ProcessAudioInput{
			SessionID: sessionID,
			Audio:     data,
			Format:    domain.AudioWAV,
		})
		return streamResponse(ctx, res, err)
	}

	var msg StreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return APIResponse{Error: &APIError{Code: "INVALID_MESSAGE", Message: "text frames must be JSON"}}
	}

	switch msg.Type {
	case "", StreamText:
		res, err := h.formService.ProcessText(ctx, service.ProcessTextInput{
			SessionID: sessionID,
			Text:      msg.Text,
			Backend:   msg.Backend,
		})
		return streamResponse(ctx, res, err)
	case StreamForm:
		res, err := h.formService.GetForm(ctx, sessionID)
		if err != nil {
			return streamResponse(ctx, nil, err)
		}
		return APIResponse{Success: true, Data: res}
	case StreamReset:
		res, err := h.formService.Reset(ctx, sessionID)
		if err != nil {
			return streamResponse(ctx, nil, err)
		}
		return APIResponse{Success: true, Data: res}
	default:
		return APIResponse{Error: &APIError{Code: "INVALID_MESSAGE", Message: "unknown message type " + msg.Type}}
	}
}

func streamResponse(ctx context.Context, res *domain.ProcessResult, err error) APIResponse {
	if err != nil {
		status, code, msg := MapDomainError(err)
		if status >= 500 {
			logger.Error(ctx, "stream: internal error", "error", err)
		}
		return APIResponse{Error: &APIError{Code: code, Message: msg}}
	}
	return ResultEnvelope(res)
}
