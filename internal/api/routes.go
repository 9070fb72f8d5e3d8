package api

import "net/http"

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/webhooks/", s.handleWebhook)
	mux.HandleFunc("/v1/deliveries", s.handleDeliveries)
	return mux
}
