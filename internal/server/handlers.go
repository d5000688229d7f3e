package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ccollicutt/chatlens/internal/pipeline"
	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/parser"
	"github.com/ccollicutt/chatlens/pkg/store"
	"github.com/ccollicutt/chatlens/pkg/webhook"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeEmptyChat          = "empty_chat"
	CodeNoMessagesFiltered = "no_messages_after_filtering"
	CodeNoMessagesSelected = "no_messages_selected"
	CodeBadRequest         = "bad_request"
	CodeTooLarge           = "too_large"
	CodeNotFound           = "not_found"
	CodeInternal           = "internal"
)

// uploadField is the multipart field carrying exports.
const uploadField = "file"

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}

// handleAnalyze accepts one or more exports, either as multipart "file"
// fields or as a raw text body, and stores the resulting report.
func (s *Server) handleAnalyze(c *gin.Context) {
	limit := s.cfg.Server.MaxUploadBytes
	if c.Request.ContentLength > limit {
		abort(c, http.StatusRequestEntityTooLarge, CodeTooLarge,
			fmt.Sprintf("upload exceeds %d bytes", limit))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	opts, err := s.analysisOptions(c)
	if err != nil {
		abort(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	sources, err := readSources(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abort(c, http.StatusRequestEntityTooLarge, CodeTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", limit))
			return
		}
		abort(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	report, err := pipeline.Run(ctx, sources, opts)

	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name
	}
	if len(s.cfg.Webhooks) > 0 {
		s.webhooks.Dispatch(context.WithoutCancel(ctx), s.cfg.Webhooks, webhook.NewPayload(report, names, err), s.logger)
	}

	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	rec, err := s.store.Put(ctx, report)
	if err != nil {
		s.logger.Error("storing result", "error", err)
		abort(c, http.StatusInternalServerError, CodeInternal, "failed to store result")
		return
	}
	s.metrics.RecordStored()

	c.Header("Location", "/api/results/"+rec.ID)
	c.JSON(http.StatusCreated, gin.H{"id": rec.ID, "report": rec.Report})
}

func (s *Server) writeAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, parser.ErrEmptyChat):
		abort(c, http.StatusUnprocessableEntity, CodeEmptyChat, "no valid messages found")
	case errors.Is(err, parser.ErrNoMessagesAfterFiltering):
		abort(c, http.StatusUnprocessableEntity, CodeNoMessagesFiltered,
			"file parsed but all messages were system notices")
	case errors.Is(err, analyzer.ErrNoMessages):
		abort(c, http.StatusUnprocessableEntity, CodeNoMessagesSelected,
			"no messages match the sender and time filters")
	default:
		s.logger.Error("analysis failed", "error", err)
		abort(c, http.StatusInternalServerError, CodeInternal, "analysis failed")
	}
}

// analysisOptions reads the optional top_n, gap, sender, from and to query
// parameters.
func (s *Server) analysisOptions(c *gin.Context) (pipeline.Options, error) {
	opts := pipeline.Options{
		Config:  s.cfg,
		Logger:  s.logger,
		Metrics: s.metrics,
	}

	if v := c.Query("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("invalid top_n %q", v)
		}
		opts.TopN = n
	}

	if v := c.Query("gap"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return opts, fmt.Errorf("invalid gap %q", v)
		}
		opts.Gap = d
	}

	opts.Senders = c.QueryArray("sender")

	tr, err := pipeline.ParseTimeRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return opts, err
	}
	opts.TimeRange = tr
	return opts, nil
}

func readSources(c *gin.Context) ([]pipeline.Source, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("missing %q upload or text body", uploadField)
		}
		return []pipeline.Source{pipeline.BytesSource("upload.txt", data)}, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	files := form.File[uploadField]
	if len(files) == 0 {
		return nil, fmt.Errorf("missing %q upload", uploadField)
	}

	sources := make([]pipeline.Source, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		sources = append(sources, pipeline.BytesSource(fh.Filename, data))
	}
	return sources, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

func (s *Server) handleGetResult(c *gin.Context) {
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteResult(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		abort(c, http.StatusNotFound, CodeNotFound, "result not found")
		return
	}
	s.logger.Error("store lookup failed", "error", err)
	abort(c, http.StatusInternalServerError, CodeInternal, "failed to read result")
}
