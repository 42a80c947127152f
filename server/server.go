package server

import (
	"crypto/tls"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"github.com/AndriiEagle/eaa-chatbot-sub002/handlers"
)

// Handlers bundles the constructed handler set for route registration.
type Handlers struct {
	Ask        *handlers.AskHandler
	Config     *handlers.ConfigHandler
	Welcome    *handlers.WelcomeHandler
	Whisper    *handlers.WhisperHandler
	Session    *handlers.SessionHandler
	Agent      *handlers.AgentHandler
	Suggestion *handlers.SuggestionHandler
	Upload     *handlers.UploadHandler
}

func SetupRoutes(h Handlers) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.Handle("/ask", h.Ask).Methods("POST")
	api.HandleFunc("/health", handlers.HealthHandler).Methods("GET")
	api.Handle("/config", h.Config).Methods("GET")
	api.Handle("/welcome/{userId}", h.Welcome).Methods("GET")

	api.Handle("/whisper/transcribe", h.Whisper).Methods("POST")

	api.HandleFunc("/agent/proactive-analysis", h.Agent.ProactiveAnalysis).Methods("POST")
	api.HandleFunc("/agent/ai-suggestions", h.Suggestion.Generate).Methods("POST")
	api.HandleFunc("/suggestions/modern", h.Suggestion.Generate).Methods("POST")
	api.HandleFunc("/suggestions/fallback", h.Suggestion.Fallback).Methods("POST")
	api.HandleFunc("/suggestions/health", h.Suggestion.Health).Methods("GET")
	api.HandleFunc("/explain-term", h.Agent.ExplainTerm).Methods("POST")

	api.HandleFunc("/chat/sessions", h.Session.CreateSession).Methods("POST")
	api.HandleFunc("/chat/sessions/{userId}", h.Session.GetSessions).Methods("GET")
	api.HandleFunc("/chat/sessions/{sessionId}", h.Session.DeleteSession).Methods("DELETE")
	api.HandleFunc("/chat/messages/{sessionId}", h.Session.GetMessages).Methods("GET")

	api.HandleFunc("/documents/upload", h.Upload.UploadDocument).Methods("POST")
	api.HandleFunc("/documents/ingest-url", h.Upload.IngestURL).Methods("POST")

	return r
}

// ServeProduction builds the server when we operate in a production environment.
func ServeProduction(n *negroni.Negroni, domains []string, certCacheDir string) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(certCacheDir),
	}

	// Listen for HTTP requests on port 80 in a new goroutine. Use
	// autocertManager.HTTPHandler(nil) as the handler. This will send ACME
	// "http-01" challenge responses as necessary, and 302 redirect all other
	// requests to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":443",
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts the server when we operate in a dev environment.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
