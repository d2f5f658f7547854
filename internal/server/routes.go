package server

import (
	"net/http"
)

func NewMux(bridgeHandler *BridgeHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/aeon", bridgeHandler.HandleBridgeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}
