package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	chilogrus "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/geolocator/geolocator/geolib"
)

var version = "dev"

var (
	app = kingpin.New(
		"geolocator",
		"Geolocation lookup service with cache-aside storage")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOLOCATOR_DEBUG").
		Bool()
	configPath = app.Arg("config-path", "Path to the config (HJSON or TOML).").
			Required().
			String()
)

func init() {
	app.Version(version)
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(afero.NewOsFs(), *configPath); err != nil {
		log.Fatal(err)
	}
}

func run(fs afero.Fs, path string) error {
	conf, err := parseConfig(fs, path)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	deps, err := makeDependencies(conf, fs)
	if err != nil {
		return err
	}

	defer deps.Close()

	geo, err := geolib.NewGeolocator(geolib.Opts{
		Provider:       deps.provider,
		Store:          deps.store,
		DNSResolver:    deps.dnsResolver,
		Logger:         newLogger(log.StandardLogger()),
		LocalOverrides: conf.GetLocalOverrides(),
		InsightsMaxAge: conf.GetInsightsMaxAge(),
		HealthProbeTTL: conf.GetHealthProbeTTL(),
	})
	if err != nil {
		return fmt.Errorf("cannot initialize geolocator: %w", err)
	}

	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(chilogrus.Logger("router", log.StandardLogger()))
	router.Mount("/", geolib.NewHTTPHandler(geo))

	var handler http.Handler = router

	if conf.BasicAuth.Enabled() {
		handler = newBasicAuthMiddleware(handler, conf.BasicAuth.User, conf.BasicAuth.Password)
	}

	rootCtx, cancel := makeRootContext()
	defer cancel()

	srv := &http.Server{
		Addr:    conf.GetListen(),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return rootCtx
		},
	}

	go func() {
		<-rootCtx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), conf.GetShutdownTimeout())
		defer cancel()

		srv.Shutdown(ctx) // nolint: errcheck
	}()

	log.WithFields(log.Fields{
		"listen":   conf.GetListen(),
		"provider": deps.provider.Name(),
		"store":    conf.Store.GetKind(),
		"dns":      conf.DNS.GetKind(),
	}).Info("Starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server has failed: %w", err)
	}

	return nil
}
