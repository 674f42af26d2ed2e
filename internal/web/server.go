// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package web exposes the scan pipeline over HTTP for host services that
// prefer an API boundary to linking the library.
package web

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"label-scan/internal/pipeline"
	"label-scan/internal/report"
	"label-scan/internal/version"
)

// maxUploadBytes bounds a single uploaded image.
const maxUploadBytes = 32 << 20

// WebServer serves the scan API
type WebServer struct {
	port   string
	pipe   *pipeline.Pipeline
	server *http.Server
}

// ScanResponse wraps one scan result for API consumers.
type ScanResponse struct {
	Success        bool                     `json:"success"`
	Report         *report.ComplianceReport `json:"report,omitempty"`
	MaskedImageB64 string                   `json:"masked_image_b64,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, pipe *pipeline.Pipeline) *WebServer {
	return &WebServer{port: port, pipe: pipe}
}

// Start starts the web server, trying successive ports when the requested
// one is busy.
func (ws *WebServer) Start() error {
	mux := ws.routes()

	var lastError error
	for i := 0; i < 10; i++ {
		currentPort := ws.port
		if i > 0 {
			currentPort = fmt.Sprintf("%d", 8080+i)
		}

		listener, err := net.Listen("tcp", ":"+currentPort)
		if err != nil {
			lastError = err
			if i == 0 {
				fmt.Printf("Port %s is not available, trying alternative ports...\n", currentPort)
			}
			continue
		}
		listener.Close()

		ws.server = ws.createSecureServer(currentPort, mux)

		fmt.Printf("Label scan API started on port %s\n", currentPort)
		fmt.Printf("POST images to http://localhost:%s/api/v1/scan\n", currentPort)

		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lastError = err
			continue
		}
		return nil
	}

	return fmt.Errorf("could not find an available port in range 8080-8089: %v", lastError)
}

// Stop stops the web server
func (ws *WebServer) Stop() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

// routes configures all HTTP route handlers
func (ws *WebServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/v1/version", ws.handleVersion)
	mux.HandleFunc("/api/v1/scan", ws.handleScan)
	return mux
}

// createSecureServer creates an HTTP server with security timeouts
func (ws *WebServer) createSecureServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Short(),
	})
}

func (ws *WebServer) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Full())
}

// handleScan accepts a multipart upload under the "file" field and runs the
// full pipeline on it. Optional query parameters: lang (comma-separated OCR
// languages) and mask=true to include the PII-redacted PNG, base64 encoded.
func (ws *WebServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ws.sendError(w, http.StatusMethodNotAllowed, "method not allowed, use POST")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		ws.sendError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ws.sendError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ws.sendError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}

	opts := pipeline.Options{
		Filename: header.Filename,
		KeepMask: r.URL.Query().Get("mask") == "true",
	}
	if lang := r.URL.Query().Get("lang"); lang != "" {
		opts.Languages = strings.Split(lang, ",")
	}

	rep, err := ws.pipe.Scan(r.Context(), data, opts)
	if err != nil {
		ws.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := ScanResponse{Success: true, Report: rep}
	if len(rep.MaskedImagePNG) > 0 {
		resp.MaskedImageB64 = base64.StdEncoding.EncodeToString(rep.MaskedImagePNG)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (ws *WebServer) sendError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ScanResponse{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
