package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Daskott/folio/server/models"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func (s *site) templateData(r *http.Request, title string) map[string]interface{} {
	pageTitle := title
	if s.config.Site.Name != "" {
		pageTitle = s.config.Site.Name + " | " + title
	}

	return map[string]interface{}{
		csrf.TemplateTag: csrf.TemplateField(r),
		"pageTitle":      pageTitle,
		"siteName":       s.config.Site.Name,
		"ownerName":      s.config.Site.Owner,
		"year":           time.Now().Year(),
		"successMessage": "",
		"errorMessage":   "",
		"form":           map[string]string{},
	}
}

// render executes page into a buffer first, so a template error never leaves a
// half written page behind.
func (s *site) render(rw http.ResponseWriter, r *http.Request, page string, status int, data map[string]interface{}) {
	tmpl, ok := s.templates[page]
	if !ok {
		s.logg.Errorf("render: unknown template %q", page)
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		s.logg.Errorf("render %v: %v", page, err)
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}

	if _, err := buf.WriteTo(rw); err != nil {
		s.logg.Debugf("render %v: %v", page, err)
	}
}

func (s *site) writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		s.logg.Error(payLoad.Errors)
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(logg *zap.SugaredLogger, server *http.Server) {
	logg.Infof("Folio server is listening on %v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(logg *zap.SugaredLogger, server *http.Server, store *models.Store) {
	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Errorf("Folio server shutdown failed:%+s", err)
	}

	if err := store.Close(); err != nil {
		logg.Errorf("Unable to close message store: %v", err)
	}

	logg.Infof("Folio server stopped properly")
}

func fatalOnError(logg *zap.SugaredLogger, err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
