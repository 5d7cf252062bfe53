package rpc

import "net/http"

// NewMux routes JSON-RPC on / and the event stream on /ws. stream may be
// nil when the stream is disabled.
func NewMux(server *Server, stream *StreamServer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", server)
	if stream != nil {
		mux.Handle("/ws", stream)
	}
	return mux
}
