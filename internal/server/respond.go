package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/pipeline"
	"github.com/matzehuels/boxlens/pkg/render"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(code)
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

// writeArtifact sends rendered bytes with the MIME type of format.
func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", render.MIMEType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// queryOptions overlays query parameters onto defaults.
func queryOptions(r *http.Request, defaults pipeline.Options) (pipeline.Options, error) {
	opts := defaults
	q := r.URL.Query()

	bools := []struct {
		name string
		dst  *bool
	}{
		{"labels", &opts.ShowLabels},
		{"sections", &opts.ShowSections},
		{"color_by_type", &opts.ColorByType},
		{"legend_on_image", &opts.LegendOnImage},
	}
	for _, b := range bools {
		raw := q.Get(b.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "query %s: %q is not a boolean", b.name, raw)
		}
		*b.dst = v
	}

	if raw := q.Get("font_size"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "query font_size: %q is not a number", raw)
		}
		opts.FontSize = v
	}
	return opts, nil
}

// queryFormat returns the single requested format, defaulting to png.
func queryFormat(r *http.Request) (string, error) {
	format := render.NormalizeFormat(r.URL.Query().Get("format"))
	if format == "" {
		return pipeline.DefaultFormat, nil
	}
	if err := errors.ValidateFormat(format, pipeline.ValidFormats); err != nil {
		return "", err
	}
	return format, nil
}
