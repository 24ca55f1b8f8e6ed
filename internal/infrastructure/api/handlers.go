package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"object-detection-demo/internal/application/services"
	"object-detection-demo/internal/application/usecases"
	"object-detection-demo/internal/domain/entities"
	domainrepos "object-detection-demo/internal/domain/repositories"
	domainservices "object-detection-demo/internal/domain/services"
	"object-detection-demo/internal/domain/valueobjects"
	infraservices "object-detection-demo/internal/infrastructure/services"
)

const maxFileSize = services.MaxUploadSize

// DialogLog exposes what the pipeline showed to the user.
type DialogLog interface {
	Alerts() []infraservices.Alert
	Loading() (bool, string)
}

type CaptureHandler struct {
	captureUseCase   *usecases.CaptureAnalysisUseCase
	parameterService *services.ParameterService
	state            domainrepos.UIStateRepository
	dialogs          DialogLog
	log              zerolog.Logger
}

func NewCaptureHandler(
	captureUseCase *usecases.CaptureAnalysisUseCase,
	parameterService *services.ParameterService,
	state domainrepos.UIStateRepository,
	dialogs DialogLog,
	log zerolog.Logger,
) *CaptureHandler {
	return &CaptureHandler{
		captureUseCase:   captureUseCase,
		parameterService: parameterService,
		state:            state,
		dialogs:          dialogs,
		log:              log,
	}
}

type objectResponse struct {
	Label      string             `json:"label"`
	Labels     []string           `json:"labels"`
	Ancestors  []string           `json:"ancestors,omitempty"`
	Confidence float64            `json:"confidence"`
	Rectangle  entities.Rectangle `json:"rectangle"`
}

type captureResponse struct {
	RunID      string           `json:"run_id"`
	Source     string           `json:"source"`
	Outcome    string           `json:"outcome"`
	Backend    string           `json:"backend,omitempty"`
	ResultText string           `json:"result_text"`
	Objects    []objectResponse `json:"objects"`
	Revision   uint64           `json:"revision"`
	Error      string           `json:"error,omitempty"`
}

type stateResponse struct {
	Revision           uint64    `json:"revision"`
	UpdatedAt          time.Time `json:"updated_at"`
	ResultText         string    `json:"result_text"`
	PlaceholderVisible bool      `json:"placeholder_visible"`
	ImageFormat        string    `json:"image_format,omitempty"`
	ImageWidth         int       `json:"image_width,omitempty"`
	ImageHeight        int       `json:"image_height,omitempty"`
	Phase              string    `json:"phase"`
	Busy               bool      `json:"busy"`
	Loading            bool      `json:"loading"`
	LoadingTitle       string    `json:"loading_title,omitempty"`
}

// HandleCapture runs the camera pipeline.
func (h *CaptureHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	source, err := h.parameterService.ParseSource(r, valueobjects.SourceCamera)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if source == valueobjects.SourceGallery {
		h.HandlePick(w, r)
		return
	}

	h.run(w, r.Context(), source)
}

// HandlePick runs the gallery pipeline on the uploaded "image" file. A request
// without a file is treated as a cancelled pick.
func (h *CaptureHandler) HandlePick(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxFileSize {
		h.sendError(w, "image is too large (10MB max)", http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize)

	data, err := h.parameterService.ParseUpload(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.sendError(w, "image is too large (10MB max)", http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Debug().Err(err).Msg("Pick request without usable upload")
		data = nil
	}

	ctx := infraservices.WithPickedImage(r.Context(), data)
	h.run(w, ctx, valueobjects.SourceGallery)
}

func (h *CaptureHandler) run(w http.ResponseWriter, ctx context.Context, source valueobjects.Source) {
	output, err := h.captureUseCase.Execute(ctx, usecases.CaptureInput{Source: source})
	if err != nil {
		if errors.Is(err, usecases.ErrCaptureInProgress) {
			h.sendError(w, err.Error(), http.StatusConflict)
			return
		}
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	switch output.Outcome {
	case usecases.OutcomeDenied:
		status = http.StatusForbidden
	case usecases.OutcomeFailed:
		status = http.StatusBadGateway
		if errors.Is(output.Err, domainservices.ErrQuotaExceeded) {
			status = http.StatusTooManyRequests
		}
	}

	w.Header().Set("Cache-Control", "no-store, max-age=0")
	h.sendJSON(w, status, h.createResponse(output))
}

func (h *CaptureHandler) createResponse(output *usecases.CaptureOutput) captureResponse {
	response := captureResponse{
		RunID:      output.RunID,
		Source:     string(output.Source),
		Outcome:    string(output.Outcome),
		ResultText: output.ResultText,
		Objects:    []objectResponse{},
		Revision:   output.State.Revision,
	}
	if output.Err != nil {
		response.Error = output.Err.Error()
	}
	if output.Result != nil {
		response.Backend = output.Result.Backend()
		for _, obj := range output.Result.Objects() {
			response.Objects = append(response.Objects, objectResponse{
				Label:      obj.Label(),
				Labels:     obj.Labels(),
				Confidence: obj.Confidence(),
				Rectangle:  obj.Rectangle(),
			})
		}
	}
	return response
}

func (h *CaptureHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, h.stateResponse(h.state.Current()))
}

func (h *CaptureHandler) stateResponse(state entities.UIState) stateResponse {
	response := stateResponse{
		Revision:           state.Revision,
		UpdatedAt:          state.UpdatedAt,
		ResultText:         state.ResultText,
		PlaceholderVisible: state.IsPlaceholderVisible(),
		Phase:              string(h.captureUseCase.Phase()),
		Busy:               h.captureUseCase.Busy(),
	}
	if image := state.CurrentImage; image != nil {
		response.ImageFormat = string(image.Format())
		response.ImageWidth = image.Width()
		response.ImageHeight = image.Height()
	}
	if h.dialogs != nil {
		response.Loading, response.LoadingTitle = h.dialogs.Loading()
	}
	return response
}

func (h *CaptureHandler) HandleStateImage(w http.ResponseWriter, r *http.Request) {
	image := h.state.Current().CurrentImage
	if image == nil {
		h.sendError(w, "no image has been captured yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", image.MimeType())
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.Write(image.Data())
}

func (h *CaptureHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := []infraservices.Alert{}
	if h.dialogs != nil {
		alerts = append(alerts, h.dialogs.Alerts()...)
	}
	h.sendJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// HandleWebSocket streams a state snapshot after every publish until the client goes away.
func (h *CaptureHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	snapshots, cancel := h.state.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-snapshots:
			if !ok {
				return
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, h.stateResponse(state))
			writeCancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("WebSocket write failed")
				return
			}
		}
	}
}

func (h *CaptureHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *CaptureHandler) sendJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *CaptureHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, statusCode, map[string]string{"error": message})
}
