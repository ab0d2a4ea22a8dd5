package server

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/jobradar/jobfinder/internal/conf"
	"github.com/jobradar/jobfinder/internal/service"
	"github.com/jobradar/jobfinder/pkg/model"
)

// NewHTTPServer wires the API routes onto a kratos HTTP server.
func NewHTTPServer(c *conf.Server, svc *service.FinderService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)
	helper := log.NewHelper(logger)

	srv.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			writeJSON(w, nethttp.StatusNotFound, map[string]string{"detail": "not found"})
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]string{
			"message": "Welcome to the Job Finder API! POST /api/search to search for jobs.",
		})
	})

	srv.HandleFunc("/api/search", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]string{"detail": "method not allowed"})
			return
		}

		var req model.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
			return
		}
		if missing := svc.Validate(&req); len(missing) > 0 {
			writeJSON(w, nethttp.StatusUnprocessableEntity, map[string]any{
				"detail":  "missing required fields",
				"missing": missing,
			})
			return
		}

		reply := svc.Search(r.Context(), &req)
		if reply.Degraded {
			helper.Warnf("degraded search result for position %q", req.Position)
		}
		writeJSON(w, nethttp.StatusOK, reply)
	})

	srv.HandleFunc("/api/sources", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, svc.Sources())
	})

	srv.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, svc.Health())
	})

	return srv
}

func writeJSON(w nethttp.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
