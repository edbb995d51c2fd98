package http

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Server hosts the styling API. The engine is exposed so tests can drive it
// through httptest without binding a port.
type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

// Run serves until the listener fails. An empty address falls back to the
// local development port the frontend expects.
func (s *Server) Run(address string) error {
	if strings.TrimSpace(address) == "" || address == ":" {
		address = ":8080"
	}
	return s.Engine.Run(address)
}
