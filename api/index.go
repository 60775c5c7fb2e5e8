package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/app"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/config"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/logger"
)

var (
	r       http.Handler
	initErr error
)

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	config.LoadEnv()

	cfg, err := config.Load("")
	if err != nil {
		initErr = err
		return
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		initErr = err
		return
	}

	a, err := app.New(context.Background(), cfg, zl)
	if err != nil {
		zl.Error("could not start", zap.Error(err))
		initErr = err
		return
	}
	r = a.Router
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"service unavailable"}`))
		return
	}
	r.ServeHTTP(w, req)
}
