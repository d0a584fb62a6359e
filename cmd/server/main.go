package main

import (
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"pulsemap/config"
	"pulsemap/handlers"
	"pulsemap/internal/database"
	"pulsemap/internal/mapview"
	"pulsemap/models"
	"pulsemap/services/accounts"
	"pulsemap/services/capture"
	"pulsemap/services/features"
	"pulsemap/services/geoloc"
	"pulsemap/services/layers"
	"pulsemap/services/reviews"
	"pulsemap/utils"
)

// application holds every component of the running server. All shared state
// lives here and is injected downward; nothing is package-global.
type application struct {
	settings *config.Settings
	db       *database.DB
	canvas   *mapview.Canvas

	accounts *accounts.Service
	registry *layers.Registry
	capture  *capture.Machine
	features *features.Service
	reviews  *reviews.Service
	geoloc   *geoloc.Service
}

func newApplication(settings *config.Settings) (*application, error) {
	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		return nil, err
	}

	canvas := mapview.NewCanvas(
		models.Layers,
		models.LatLng{Lat: settings.Map.CenterLat, Lng: settings.Map.CenterLng},
		settings.Map.Zoom,
	)

	accountsSvc, err := accounts.NewService(db.Store)
	if err != nil {
		db.Close()
		return nil, err
	}
	registry, err := layers.NewRegistry(db.Store, canvas)
	if err != nil {
		db.Close()
		return nil, err
	}
	machine := capture.NewMachine(canvas)
	featuresSvc, err := features.NewService(db.Store, canvas, accountsSvc, machine)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &application{
		settings: settings,
		db:       db,
		canvas:   canvas,
		accounts: accountsSvc,
		registry: registry,
		capture:  machine,
		features: featuresSvc,
		reviews:  reviews.NewService(accountsSvc, featuresSvc),
		geoloc:   geoloc.NewService(canvas, machine, nil),
	}, nil
}

func (app *application) routes() *mux.Router {
	r := utils.NewRouter()

	auth := handlers.NewAuthHandler(app.accounts)
	layersH := handlers.NewLayersHandler(app.registry)
	captureH := handlers.NewCaptureHandler(app.capture, app.registry)
	featuresH := handlers.NewFeaturesHandler(app.features, app.reviews)
	mapH := handlers.NewMapHandler(app.canvas)
	locationH := handlers.NewLocationHandler(app.geoloc)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", auth.Me).Methods(http.MethodGet)

	api.HandleFunc("/layers", layersH.List).Methods(http.MethodGet)
	api.HandleFunc("/layers/{layerID}/toggle", layersH.Toggle).Methods(http.MethodPost)
	api.HandleFunc("/templates", layersH.ListTemplates).Methods(http.MethodGet)
	api.HandleFunc("/templates", layersH.SaveTemplate).Methods(http.MethodPost)
	api.HandleFunc("/templates/apply", layersH.ApplyTemplate).Methods(http.MethodPost)

	api.HandleFunc("/capture/start", captureH.Start).Methods(http.MethodPost)
	api.HandleFunc("/capture/click", captureH.Click).Methods(http.MethodPost)
	api.HandleFunc("/capture/dblclick", captureH.DoubleClick).Methods(http.MethodPost)
	api.HandleFunc("/capture/dragend", captureH.DragEnd).Methods(http.MethodPost)
	api.HandleFunc("/capture/clear", captureH.Clear).Methods(http.MethodPost)
	api.HandleFunc("/capture/selection", captureH.Selection).Methods(http.MethodGet)

	api.HandleFunc("/features", featuresH.Create).Methods(http.MethodPost)
	api.HandleFunc("/features", featuresH.List).Methods(http.MethodGet)
	api.HandleFunc("/features/{featureID}", featuresH.Get).Methods(http.MethodGet)
	api.HandleFunc("/features/{featureID}/reviews", featuresH.AddReview).Methods(http.MethodPost)
	api.HandleFunc("/features/{featureID}/save", featuresH.Save).Methods(http.MethodPost)
	api.HandleFunc("/saved", featuresH.Saved).Methods(http.MethodGet)

	api.HandleFunc("/map/overlays", mapH.Overlays).Methods(http.MethodGet)
	api.HandleFunc("/location/capture", locationH.Capture).Methods(http.MethodPost)
	api.HandleFunc("/location/me", locationH.LocateMe).Methods(http.MethodPost)

	return r
}

func setupLogging(settings config.LogSettings) {
	var out io.Writer = os.Stderr
	if settings.File != "" {
		out = &lumberjack.Logger{
			Filename:   settings.File,
			MaxSize:    settings.MaxSizeMB,
			MaxBackups: settings.MaxBackups,
			MaxAge:     settings.MaxAgeDays,
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, nil)))
}

func main() {
	configPath := flag.String("config", "pulsemap.yaml", "path to the settings file")
	flag.Parse()

	settings, err := config.NewManager(afero.NewOsFs(), *configPath).Load()
	if err != nil {
		slog.Error("server.config_failed", "error", err)
		os.Exit(1)
	}

	setupLogging(settings.Log)

	app, err := newApplication(settings)
	if err != nil {
		slog.Error("server.startup_failed", "error", err)
		os.Exit(1)
	}
	defer app.db.Close()

	slog.Info("server.listening", "addr", settings.Server.ListenAddr)
	if err := http.ListenAndServe(settings.Server.ListenAddr, app.routes()); err != nil {
		slog.Error("server.stopped", "error", err)
		os.Exit(1)
	}
}
