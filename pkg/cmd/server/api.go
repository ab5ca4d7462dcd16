package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fadliRafidan/smart-lock-api/config"
	"github.com/fadliRafidan/smart-lock-api/pkg/api"
	"github.com/fadliRafidan/smart-lock-api/pkg/controller"
	"github.com/fadliRafidan/smart-lock-api/pkg/devicestate"
	"github.com/fadliRafidan/smart-lock-api/pkg/notify"
	"github.com/fadliRafidan/smart-lock-api/pkg/notify/natsio"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	nats "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type apiServer struct {
	c      *config.Config
	quitCh chan bool
	doneCh chan bool

	coord      *devicestate.Coordinator
	closeStore func() error
	nc         *nats.Conn
	ctrl       *controller.Controller
}

func newAPIServer(c *config.Config) (*apiServer, error) {
	s := &apiServer{
		c:      c,
		quitCh: make(chan bool),
		doneCh: make(chan bool),
	}

	store, closeStore, err := OpenStore(c)
	if err != nil {
		return nil, err
	}
	s.closeStore = closeStore

	var publisher notify.Publisher = notify.Discard
	if c.NATSServerURL != "" {
		nc, err := nats.Connect(c.NATSServerURL,
			nats.Name("smartlock"),
			nats.DrainTimeout(10*time.Second),
			nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
				log.Error("nats: ", err)
			}),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Warn("nats: disconnected: ", err)
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Info("nats: reconnected to ", nc.ConnectedUrl())
			}))
		if err != nil {
			closeStore()
			return nil, err
		}
		s.nc = nc
		publisher = natsio.New(nc, c.NATSBaseSubject)
	}

	s.coord = devicestate.NewCoordinator(store, publisher, c.UnitOfWorkTimeout)

	if s.nc != nil {
		s.ctrl = controller.New(s.nc, s.coord, c.NATSBaseSubject, c.UnitOfWorkTimeout)
	}

	return s, nil
}

// Serve runs the web server until Shutdown is called. It returns early with
// an error if the server can't be started.
func (s *apiServer) Serve() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(logger())

	// Register API endpoints
	apiHandler := api.NewHandler(s.nc, s.c.NATSBaseSubject, s.coord)
	apiHandler.RegisterRoutes(e)

	if s.ctrl != nil {
		if err := s.ctrl.Subscribe(); err != nil {
			log.Error("failed to subscribe controller: ", err)
		}
	}

	startErrCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"host":    s.c.BindHost,
			"port":    s.c.BindPort,
			"storage": s.c.Storage,
			"version": s.c.BuildVersion,
		}).Info("Starting server")

		if err := e.Start(fmt.Sprintf("%s:%d", s.c.BindHost, s.c.BindPort)); err != nil && err != http.ErrServerClosed {
			startErrCh <- err
		}
	}()

	// Wait until receiving the quit signal
	select {
	case err := <-startErrCh:
		return errors.Wrap(err, "failed to start server")
	case <-s.quitCh:
	}
	log.Info("Shutdown signal received")

	// Create a 10 second timeout context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the echo web server
	if err := e.Shutdown(ctx); err != nil {
		log.Error(err)
	}

	// We've done!
	s.doneCh <- true
	return nil
}

func (s *apiServer) Shutdown() {
	// Send the quit signal to the Serve() routine
	s.quitCh <- true

	// Wait up to 10 seconds
	select {
	case <-s.doneCh:
		log.Info("Shutdown server successful")
	case <-time.After(10 * time.Second):
		log.Error("Shutdown server failed")
	}

	s.close()
}

// close releases the connections held by the server
func (s *apiServer) close() {
	if s.ctrl != nil {
		s.ctrl.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Drain()
	}
	if err := s.closeStore(); err != nil {
		log.Error("failed to close storage: ", err)
	}
}

func RunServeAPI(c *config.Config) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := c.Validate(); err != nil {
			log.Error("invalid configuration: ", err)
			os.Exit(2)
		}
		if level, err := log.ParseLevel(c.LogLevel); err == nil {
			log.SetLevel(level)
		}

		s, err := newAPIServer(c)
		if err != nil {
			log.Error("failed to create new server instance: ", err)
			os.Exit(1)
		}

		serveErrCh := make(chan error, 1)
		go func() {
			serveErrCh <- s.Serve()
		}()

		// Wait for interrupt signal to gracefully shutdown the server
		quitCh := make(chan os.Signal, 1)
		signal.Notify(quitCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serveErrCh:
			s.close()
			log.Error(err)
			os.Exit(1)
		case <-quitCh:
			// Shutdown the server
			s.Shutdown()
		}
	}
}

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}
