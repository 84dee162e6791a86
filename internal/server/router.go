package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const uploadPath = "/upload"

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(s.log))

	if len(s.opts.CORSOrigins) > 0 {
		cc := cors.Config{
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", headerRequestID},
			ExposeHeaders: []string{headerRequestID},
			MaxAge:        12 * time.Hour,
		}
		if slices.Contains(s.opts.CORSOrigins, "*") {
			cc.AllowAllOrigins = true
		} else {
			cc.AllowOrigins = s.opts.CORSOrigins
		}
		r.Use(cors.New(cc))
	}

	r.GET("/", s.index)
	r.GET("/healthcheck", healthCheck)
	r.GET("/models", s.listModels)
	r.POST(uploadPath, s.upload)

	return r
}
