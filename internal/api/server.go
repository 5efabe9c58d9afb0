// Package api serves MRC file inspection over HTTP: header metadata as
// JSON, grayscale slice previews as PNG, and uploads into a data directory.
package api

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/emtools/mrcio/internal/logger"
	"github.com/emtools/mrcio/pkg/mrc"
)

type Server struct {
	dataDir string
	codec   *mrc.Codec
	log     logger.Logger
}

func NewServer(dataDir string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		dataDir: dataDir,
		codec:   &mrc.Codec{Log: log.Slog()},
		log:     log,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/volumes", s.handleList)
	e.GET("/v1/volumes/:name", s.handleHeader)
	e.GET("/v1/volumes/:name/slices/:z", s.handleSlice)
	e.POST("/v1/volumes", s.handleUpload)
}

// HeaderDTO is the JSON shape of an MRC header summary.
type HeaderDTO struct {
	Name       string     `json:"name"`
	Nx         int32      `json:"nx"`
	Ny         int32      `json:"ny"`
	Nz         int32      `json:"nz"`
	Mode       int32      `json:"mode"`
	Dim        string     `json:"dim"`
	ISPG       int32      `json:"ispg"`
	MZ         int32      `json:"mz"`
	Cell       [3]float32 `json:"cell"`
	CellAngles [3]float32 `json:"cell_angles"`
	DMin       float32    `json:"dmin"`
	DMax       float32    `json:"dmax"`
	DMean      float32    `json:"dmean"`
	RMS        float32    `json:"rms"`
	NVersion   int32      `json:"nversion"`
	ExtType    string     `json:"exttype"`
	ExtBytes   int32      `json:"ext_bytes"`
	Labels     []string   `json:"labels"`
}

// NewHeaderDTO builds the JSON summary for a header; the CLI's --json
// output and the HTTP API share it.
func NewHeaderDTO(name string, h *mrc.Header) HeaderDTO {
	dim, _ := h.Dim()
	return HeaderDTO{
		Name: name,
		Nx:   h.NX, Ny: h.NY, Nz: h.NZ,
		Mode: int32(h.Mode),
		Dim:  dim.String(),
		ISPG: h.ISPG, MZ: h.MZ,
		Cell:       [3]float32{h.CellA, h.CellB, h.CellC},
		CellAngles: [3]float32{h.CellAlpha, h.CellBeta, h.CellGamma},
		DMin:       h.DMin, DMax: h.DMax, DMean: h.DMean, RMS: h.RMS,
		NVersion: h.NVersion,
		ExtType:  strings.TrimRight(string(h.ExtType[:]), " \x00"),
		ExtBytes: h.NSymBT,
		Labels:   h.Labels(),
	}
}

func (s *Server) handleList(c *echo.Context) error {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isMRCName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return writeJSON(c, http.StatusOK, map[string]any{"volumes": names})
}

func (s *Server) handleHeader(c *echo.Context) error {
	path, err := s.resolve(c.Param("name"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, err.Error())
	}
	img, err := s.codec.Read(path)
	if err != nil {
		return writeReadError(c, err)
	}
	return writeJSON(c, http.StatusOK, NewHeaderDTO(filepath.Base(path), img.Meta()))
}

func (s *Server) handleSlice(c *echo.Context) error {
	path, err := s.resolve(c.Param("name"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, err.Error())
	}
	z, err := strconv.Atoi(c.Param("z"))
	if err != nil || z < 1 {
		return writeError(c, http.StatusBadRequest, "slice index must be a positive integer")
	}
	img, err := s.codec.ReadSection(path, z, 1)
	if err != nil {
		return writeReadError(c, err)
	}
	out, err := renderSlice(img)
	if err != nil {
		return writeError(c, http.StatusUnprocessableEntity, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentType, "image/png")
	c.Response().WriteHeader(http.StatusOK)
	return png.Encode(c.Response(), out)
}

func (s *Server) handleUpload(c *echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, http.StatusBadRequest, "multipart field \"file\" is required")
	}
	id := uuid.NewString()
	name := id + "_" + filepath.Base(fh.Filename)
	dst := filepath.Join(s.dataDir, name)

	src, err := fh.Open()
	if err != nil {
		return writeError(c, http.StatusBadRequest, err.Error())
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
	_, cpErr := io.Copy(out, src)
	closeErr := out.Close()
	if cpErr != nil || closeErr != nil {
		_ = os.Remove(dst)
		return writeError(c, http.StatusInternalServerError, "upload failed")
	}

	// Reject files the codec cannot read rather than keeping junk around.
	if _, err := s.codec.Read(dst); err != nil {
		_ = os.Remove(dst)
		return writeReadError(c, err)
	}
	s.log.Info("volume uploaded", "id", id, "name", name)
	return writeJSON(c, http.StatusCreated, map[string]string{"id": id, "name": name})
}

// resolve maps a request name onto the data directory, refusing traversal.
func (s *Server) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid volume name %q", name)
	}
	return filepath.Join(s.dataDir, name), nil
}

// renderSlice normalizes the single-section array to an 8-bit grayscale PNG.
func renderSlice(img *mrc.Image) (image.Image, error) {
	arr := img.Data()
	nx, ny, _ := arr.Dims()

	vals := make([]float64, 0, arr.Len())
	if !arr.ForEachScalar(func(v float64) { vals = append(vals, v) }) {
		return nil, fmt.Errorf("mode %s has no preview", img.Meta().Mode)
	}
	if len(vals) != nx*ny {
		// Complex modes visit two scalars per element; keep the first of
		// each pair (the real component).
		trimmed := make([]float64, 0, nx*ny)
		for i := 0; i < len(vals); i += 2 {
			trimmed = append(trimmed, vals[i])
		}
		vals = trimmed
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	scale := 0.0
	if hi > lo {
		scale = 255 / (hi - lo)
	}

	out := image.NewGray(image.Rect(0, 0, nx, ny))
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			v := vals[x*ny+y]
			out.SetGray(x, y, color.Gray{Y: uint8((v - lo) * scale)})
		}
	}
	return out, nil
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}

func writeError(c *echo.Context, status int, msg string) error {
	return writeJSON(c, status, map[string]string{"error": msg})
}

func writeReadError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, mrc.ErrBadExtension):
		return writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, mrc.ErrRange):
		return writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, mrc.ErrUnsupportedMode), errors.Is(err, mrc.ErrUnknownMode):
		return writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
}

func isMRCName(name string) bool {
	n := strings.ToLower(name)
	n = strings.TrimSuffix(n, ".gz")
	switch filepath.Ext(n) {
	case ".mrc", ".map", ".rec", ".mrcs", ".st":
		return true
	default:
		return false
	}
}
