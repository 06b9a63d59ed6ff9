// Package restserver exposes the assessment engine over HTTP. It is a
// thin adapter: the engine keeps its library-level contract, and this
// controller only translates requests, responses, and the error taxonomy.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/mfairbank/restocalc/internal/catalog"
	"github.com/mfairbank/restocalc/internal/engine"
	"github.com/mfairbank/restocalc/internal/log"
	"github.com/mfairbank/restocalc/internal/views"
	"github.com/mfairbank/restocalc/pkg/config"
	"go.uber.org/zap"
)

// Controller represents the REST server controller.
type Controller struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	cfg       config.RESTServerData
	Server    http.Server
	engine    *engine.Engine
	store     *catalog.Store
	projector *views.Projector
	logger    *zap.SugaredLogger
	handlers  *Handlers
}

// NewController creates a new REST server controller.
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, eng *engine.Engine, store *catalog.Store, projector *views.Projector, logger *zap.SugaredLogger) (*Controller, error) {
	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}
	if rc.HTTPPort == 0 {
		logger.Info("rest.http_port not provided; defaulting to 8080")
		rc.HTTPPort = 8080
	}

	ctrl := &Controller{
		ctx:       ctx,
		wg:        wg,
		cfg:       rc,
		engine:    eng,
		store:     store,
		projector: projector,
		logger:    logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	router := mux.NewRouter()
	router.HandleFunc("/api/health", ctrl.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/catalog", ctrl.handlers.GetCatalog).Methods(http.MethodGet)
	router.HandleFunc("/api/assessments", ctrl.handlers.PostAssessment).Methods(http.MethodPost)

	ctrl.Server = http.Server{
		Addr:         fmt.Sprintf("%s:%d", rc.ListenAddr, rc.HTTPPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return ctrl, nil
}

// StartController starts the HTTP listener and shuts it down when the
// controller context is cancelled.
func (c *Controller) StartController() error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		log.Infof("REST server listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("REST server shutdown error: %v", err)
		}
	}()

	return nil
}
