package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/docstruct/docstruct/constants"
	"github.com/docstruct/docstruct/internal/common"
	"github.com/docstruct/docstruct/internal/pipeline"
	"github.com/docstruct/docstruct/internal/repository"
)

const (
	sessionName    = "docstruct"
	previewLimit   = 1000
	maxUploadBytes = 32 << 20
)

// Register wires the handler routes onto the echo instance.
func (s *Service) Register(e *echo.Echo) {
	e.GET("/", s.handleIndex)
	e.POST("/api-key", s.handleAPIKey)
	e.GET("/status", s.handleStatus)
	e.POST("/upload", s.handleUpload)
	e.GET("/preview", s.handlePreview)
	e.POST("/extract", s.handleExtract)
	e.GET("/download", s.handleDownload)
	e.GET("/runs", s.handleRuns)
}

func (s *Service) sessionToken(c echo.Context) string {
	sess, _ := session.Get(sessionName, c)
	tok, _ := sess.Values["doc_token"].(string)
	if tok == "" {
		tok = newStateToken()
		sess.Values["doc_token"] = tok
		_ = sess.Save(c.Request(), c.Response())
	}
	return tok
}

// apiKey resolves the credential for this request: the session-supplied key
// overrides the environment one for that session only.
func (s *Service) apiKey(c echo.Context) string {
	sess, _ := session.Get(sessionName, c)
	if k, ok := sess.Values["api_key"].(string); ok && k != "" {
		return k
	}
	return s.cfg.LLM.APIKey
}

func (s *Service) connected(c echo.Context) bool {
	sess, _ := session.Get(sessionName, c)
	if v, ok := sess.Values["connected"].(bool); ok {
		return v
	}
	return false
}

type indexData struct {
	Connected bool
	Model     string
	HasKey    bool
	Filename  string
	Preview   string
	Pairs     []pairView
	HasXLSX   bool
	LastError string
	Runs      []repository.Run
}

type pairView struct {
	Key     string
	Value   string
	Comment string
}

func (s *Service) handleIndex(c echo.Context) error {
	st := s.state(s.sessionToken(c))

	data := indexData{
		Connected: s.connected(c),
		Model:     s.cfg.LLM.Model,
		HasKey:    s.apiKey(c) != "",
		Filename:  st.Filename,
		Preview:   previewText(st.Text),
		HasXLSX:   st.XLSX != nil,
		LastError: st.LastError,
	}
	for _, p := range st.Pairs {
		data.Pairs = append(data.Pairs, pairView{Key: p.Key, Value: p.Value, Comment: p.Comment})
	}
	if s.runs != nil {
		if runs, err := s.runs.ListRecent(c.Request().Context(), 10); err == nil {
			data.Runs = runs
		}
	}
	return c.Render(http.StatusOK, "index.html", data)
}

// handleAPIKey stores a session-scoped key and probes the endpoint with it.
// The probe result drives the connected/disconnected indicator and whether
// the run action is enabled.
func (s *Service) handleAPIKey(c echo.Context) error {
	key := strings.TrimSpace(c.FormValue("api_key"))

	sess, _ := session.Get(sessionName, c)
	sess.Values["api_key"] = key

	resolved := key
	if resolved == "" {
		resolved = s.cfg.LLM.APIKey
	}
	connected := false
	if resolved != "" {
		if err := s.newClient(resolved).CheckConnection(c.Request().Context()); err != nil {
			s.log.Warn("server.api_key.check_failed", "error", err)
		} else {
			connected = true
		}
	}
	sess.Values["connected"] = connected
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return common.HTTPError(fmt.Errorf("save session: %w", err))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Service) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"connected": s.connected(c),
		"model":     s.cfg.LLM.Model,
	})
}

func (s *Service) handleUpload(c echo.Context) error {
	token := s.sessionToken(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return common.HTTPError(common.NewAppError(common.CodeInputError, "no file uploaded", err))
	}
	if !constants.IsAllowedExt(filepath.Ext(fh.Filename)) {
		return common.HTTPError(common.NewAppError(common.CodeInputError, "only PDF files are accepted", common.ErrInvalidInput))
	}
	if fh.Size > maxUploadBytes {
		return common.HTTPError(common.NewAppError(common.CodeInputError, "file too large", common.ErrInvalidInput))
	}

	f, err := fh.Open()
	if err != nil {
		return common.HTTPError(common.NewAppError(common.CodeInputError, "open upload", err))
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return common.HTTPError(common.NewAppError(common.CodeInputError, "read upload", err))
	}

	// Extract once per upload; preview and extract reuse the cached text.
	st := &sessionState{Filename: fh.Filename}
	res, err := s.extractor.Extract(c.Request().Context(), data)
	if err != nil {
		s.log.Warn("server.upload.extract_failed", "filename", fh.Filename, "error", err)
		st.LastError = "Error reading PDF: " + err.Error()
	} else {
		st.Text = res.Text
		st.Pages = res.Pages
	}
	s.resetState(token, st)

	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Service) handlePreview(c echo.Context) error {
	st := s.state(s.sessionToken(c))
	if st.Text == "" {
		return common.HTTPError(common.NewAppError(common.CodeInputError, "no extracted text available", common.ErrInvalidInput))
	}
	return c.String(http.StatusOK, previewText(st.Text))
}

func (s *Service) handleExtract(c echo.Context) error {
	token := s.sessionToken(c)
	st := s.state(token)

	key := s.apiKey(c)
	if key == "" {
		return common.HTTPError(common.ConnectivityError("enter a valid API key to enable extraction", common.ErrUnavailable))
	}
	if st.Text == "" {
		return common.HTTPError(common.NewAppError(common.CodeInputError, "cannot proceed: PDF text content is empty", common.ErrInvalidInput))
	}

	proc := pipeline.NewProcessor(s.extractor, s.newClient(key), s.exporter, s.runs, s.log)
	res, err := proc.RunFromText(c.Request().Context(), st.Text, st.Pages, st.Filename)
	if err != nil {
		st.Pairs = nil
		st.XLSX = nil
		st.LastError = err.Error()
		return c.Redirect(http.StatusSeeOther, "/")
	}

	st.Pairs = res.Pairs
	st.XLSX = res.XLSX
	st.LastError = ""
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Service) handleDownload(c echo.Context) error {
	st := s.state(s.sessionToken(c))
	if st.XLSX == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no workbook available; run extraction first")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, constants.OutputFilename))
	return c.Blob(http.StatusOK, constants.XLSXContentType, st.XLSX)
}

func (s *Service) handleRuns(c echo.Context) error {
	if s.runs == nil {
		return c.JSON(http.StatusOK, []repository.Run{})
	}
	runs, err := s.runs.ListRecent(c.Request().Context(), 20)
	if err != nil {
		return common.HTTPError(fmt.Errorf("list runs: %w", err))
	}
	if runs == nil {
		runs = []repository.Run{}
	}
	return c.JSON(http.StatusOK, runs)
}

func previewText(text string) string {
	if text == "" {
		return ""
	}
	if len(text) > previewLimit {
		return text[:previewLimit] + " ..."
	}
	return text
}
