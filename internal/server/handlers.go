package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/patrickprogramme/scriptratio/internal/assets"
	"github.com/patrickprogramme/scriptratio/internal/chart"
	"github.com/patrickprogramme/scriptratio/internal/fsutil"
)

// au-delà, les parties du formulaire sont écrites sur disque par mime/multipart
const multipartMemory = 32 << 20

// messages d'erreur renvoyés au client (repris par la page d'upload)
const (
	msgNoFilePart    = "No file part"
	msgNoSelected    = "No selected file"
	msgInvalidModel  = "Invalid model selected"
	msgTooLarge      = "File too large"
	msgTranscription = "Error during transcription: "
)

// respondError : enveloppe {"error": msg}.
func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) index(c *gin.Context) {
	html, err := s.page.Render(assets.IndexTemplate, indexData{
		Title:        chart.Title,
		Models:       s.models.Names(),
		DefaultModel: s.models.Default(),
		UploadPath:   uploadPath,
	})
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "template error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) listModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models":  s.models.Names(),
		"default": s.models.Default(),
	})
}

// upload : POST multipart (file, model) -> rapport JSON.
func (s *Server) upload(c *gin.Context) {
	if s.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(c, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		respondError(c, http.StatusBadRequest, msgNoFilePart)
		return
	}
	form := c.Request.MultipartForm
	defer func() { _ = form.RemoveAll() }()

	files := form.File["file"]
	if len(files) == 0 {
		// un <input type=file> vide arrive avec filename="" : mime/multipart le range dans Value
		if _, ok := form.Value["file"]; ok {
			respondError(c, http.StatusBadRequest, msgNoSelected)
			return
		}
		respondError(c, http.StatusBadRequest, msgNoFilePart)
		return
	}
	fh := files[0]
	if strings.TrimSpace(fh.Filename) == "" {
		respondError(c, http.StatusBadRequest, msgNoSelected)
		return
	}

	modelName := s.models.Default()
	if v, ok := form.Value["model"]; ok && len(v) > 0 {
		modelName = v[0] // présent mais vide => modèle invalide
	}
	backend, err := s.models.Lookup(modelName)
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidModel)
		return
	}

	audioPath, err := s.saveUpload(fh)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Error saving file: "+err.Error())
		return
	}
	if !s.opts.KeepUploads {
		defer func() {
			if err := os.Remove(audioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				s.log.Warn("suppression de l'upload impossible", "path", audioPath, "error", err)
			}
		}()
	}

	log := s.log.With("request_id", c.GetString(ctxRequestID), "model", modelName)
	log.Info("transcription", "file", filepath.Base(audioPath))

	res, err := backend.Transcribe(c.Request.Context(), audioPath)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, msgTranscription+err.Error())
		return
	}

	report, err := s.analyzer.Analyze(c.Request.Context(), res, modelName)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Error during analysis: "+err.Error())
		return
	}
	log.Info("analyse terminée", "chinese_ratio", report.ChineseRatio, "japanese_ratio", report.JapaneseRatio)
	c.JSON(http.StatusOK, report)
}

// saveUpload copie le fichier reçu sous un nom unique dans le dossier d'upload.
func (s *Server) saveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("ouverture de l'upload : %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + "_" + fsutil.SanitizeFilename(filepath.Base(fh.Filename))
	dst := filepath.Join(s.opts.UploadDir, name)
	if _, err := fsutil.WriteStreamAtomic(dst, src, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}
