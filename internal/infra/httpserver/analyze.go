package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rumera-ai/rumera/internal/domain/analysis"
	"github.com/rumera-ai/rumera/internal/domain/history"
	"github.com/rumera-ai/rumera/internal/middleware"
)

// Body limits.
const (
	maxJSONBody   = 50 << 20
	maxImageBody  = 50 << 20
	maxAudioBody  = 100 << 20
	maxFramesBody = 50 << 20
	multipartMem  = 32 << 20
)

func decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxJSONBody)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		return badRequest("Invalid JSON body")
	}
	return nil
}

func isMultipart(req *http.Request) bool {
	return strings.HasPrefix(middleware.NormalizeMIME(req.Header.Get("Content-Type")), "multipart/")
}

func parseMultipart(w http.ResponseWriter, req *http.Request, limit int64) error {
	req.Body = http.MaxBytesReader(w, req.Body, limit)
	if err := req.ParseMultipartForm(multipartMem); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return badRequest("Invalid multipart body")
	}
	return nil
}

// readPart returns the bytes and content type of one uploaded file. The
// declared type wins; sniffing only fills a missing header.
func readPart(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return data, middleware.NormalizeMIME(ct), nil
}

// formFile reads the named file field; missing -> 400 with msg.
func formFile(req *http.Request, field, missing string, want analysis.Modality) ([]byte, string, string, error) {
	_, fh, err := req.FormFile(field)
	if err != nil {
		return nil, "", "", badRequest(missing)
	}
	data, ct, err := readPart(fh)
	if err != nil {
		return nil, "", "", err
	}
	if err := middleware.ValidateUpload(want, ct); err != nil {
		return nil, "", "", fmt.Errorf("%w: Invalid file type: %s", analysis.ErrUnsupportedMedia, ct)
	}
	return data, ct, fh.Filename, nil
}

// POST /analyze/text
// Body: {"text": "..."}
func (rt *Router) handleText(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	res, err := rt.analysis.AnalyzeText(req.Context(), middleware.PrincipalFromRequest(req), body.Text)
	if err != nil {
		return err
	}
	return ok(w, res)
}

// POST /analyze/image (multipart field "image")
func (rt *Router) handleImage(w http.ResponseWriter, req *http.Request) error {
	if !isMultipart(req) {
		return badRequest("Image file is required")
	}
	if err := parseMultipart(w, req, maxImageBody); err != nil {
		return err
	}
	data, ct, name, err := formFile(req, "image", "Image file is required", analysis.ModalityImage)
	if err != nil {
		return err
	}
	res, err := rt.analysis.AnalyzeImage(req.Context(), middleware.PrincipalFromRequest(req), analysis.ImageInput{
		Filename:    name,
		ContentType: ct,
		Data:        data,
	})
	if err != nil {
		return err
	}
	return ok(w, res)
}

// POST /analyze/audio
// JSON {"transcription", "filename"} or multipart field "audio".
func (rt *Router) handleAudio(w http.ResponseWriter, req *http.Request) error {
	p := middleware.PrincipalFromRequest(req)
	if isMultipart(req) {
		if err := parseMultipart(w, req, maxAudioBody); err != nil {
			return err
		}
		data, ct, name, err := formFile(req, "audio", "Audio file is required", analysis.ModalityAudio)
		if err != nil {
			return err
		}
		res, err := rt.analysis.AnalyzeAudioFile(req.Context(), p, analysis.AudioInput{
			Filename:    name,
			ContentType: ct,
			Data:        data,
		})
		if err != nil {
			return err
		}
		return ok(w, res)
	}

	var body struct {
		Transcription string `json:"transcription"`
		Filename      string `json:"filename"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	res, err := rt.analysis.AnalyzeAudioTranscript(req.Context(), p, body.Transcription, body.Filename)
	if err != nil {
		return err
	}
	return ok(w, res)
}

// POST /analyze/video
// JSON {"filename", "duration", "resolution", "fps"}, or multipart with the
// same fields as form values plus any number of image files under "frames".
func (rt *Router) handleVideo(w http.ResponseWriter, req *http.Request) error {
	var in analysis.VideoInput
	if isMultipart(req) {
		if err := parseMultipart(w, req, maxFramesBody); err != nil {
			return err
		}
		in.Filename = req.FormValue("filename")
		in.Resolution = req.FormValue("resolution")
		in.Duration, _ = strconv.ParseFloat(req.FormValue("duration"), 64)
		in.FPS, _ = strconv.ParseFloat(req.FormValue("fps"), 64)
		for _, fh := range req.MultipartForm.File["frames"] {
			data, ct, err := readPart(fh)
			if err != nil {
				return err
			}
			if err := middleware.ValidateFrame(ct); err != nil {
				return fmt.Errorf("%w: Invalid frame type: %s", analysis.ErrUnsupportedMedia, ct)
			}
			in.Frames = append(in.Frames, data)
		}
	} else if err := decodeJSON(w, req, &in); err != nil {
		return err
	}

	res, err := rt.analysis.AnalyzeVideo(req.Context(), middleware.PrincipalFromRequest(req), in)
	if err != nil {
		return err
	}
	return ok(w, res)
}

// POST /analyze/explain
// Body: {"type": "text|image|audio|video", "results": {...}}
func (rt *Router) handleExplain(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Type    string          `json:"type"`
		Results json.RawMessage `json:"results"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	if len(body.Results) == 0 {
		return badRequest("Analysis results are required")
	}
	exp, err := rt.analysis.Explain(req.Context(), body.Type, body.Results)
	if err != nil {
		return err
	}
	return ok(w, exp)
}

// GET /analyze/history?page=&page_size=
func (rt *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	u, err := requireUser(req)
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	page, size = middleware.ValidatePage(page, size)

	list, err := rt.analysis.History(req.Context(), string(u.ID), page, size)
	if err != nil {
		return err
	}
	return ok(w, list)
}

// DELETE /analyze/history/{id}
func (rt *Router) handleDeleteHistory(w http.ResponseWriter, req *http.Request) error {
	u, err := requireUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateEntryID(id); err != nil {
		return badRequest("Invalid history id")
	}
	if err := rt.analysis.DeleteHistory(req.Context(), string(u.ID), history.EntryID(id)); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, envelope{Success: true, Message: "History entry deleted"})
}
