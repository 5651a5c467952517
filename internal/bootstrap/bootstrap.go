package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/jmoiron/sqlx"

	"courseplay/internal/devserver"
	courseinadapter "courseplay/internal/modules/course/adapter/in"
	courseoutadapter "courseplay/internal/modules/course/adapter/out"
	courseservice "courseplay/internal/modules/course/service"
	courseusecase "courseplay/internal/modules/course/usecase"
	playbackinadapter "courseplay/internal/modules/playback/adapter/in"
	playbackoutadapter "courseplay/internal/modules/playback/adapter/out"
	playbackdto "courseplay/internal/modules/playback/dto"
	playbackservice "courseplay/internal/modules/playback/service"
	playbackusecase "courseplay/internal/modules/playback/usecase"
	progressinadapter "courseplay/internal/modules/progress/adapter/in"
	progressoutadapter "courseplay/internal/modules/progress/adapter/out"
	progressservice "courseplay/internal/modules/progress/service"
	progressusecase "courseplay/internal/modules/progress/usecase"
	surfaceinadapter "courseplay/internal/modules/surface/adapter/in"
	surfaceoutadapter "courseplay/internal/modules/surface/adapter/out"
	surfacedomain "courseplay/internal/modules/surface/domain"
	surfaceout "courseplay/internal/modules/surface/port/out"
	surfaceservice "courseplay/internal/modules/surface/service"
	surfaceusecase "courseplay/internal/modules/surface/usecase"
	"courseplay/internal/platform/apiclient"
	"courseplay/internal/platform/clock"
	"courseplay/internal/platform/config"
	"courseplay/internal/platform/id"
	"courseplay/internal/platform/sqlitedb"
	uiapp "courseplay/internal/ui/app"
)

type App struct {
	CourseCLI   courseinadapter.CLIHandler
	ProgressCLI progressinadapter.CLIHandler
	SurfaceCLI  surfaceinadapter.CLIHandler
	PlaybackCLI playbackinadapter.CLIHandler
	PlaybackTUI playbackinadapter.TUIHandler

	// Notices receives lesson and course notices for the terminal surfaces.
	Notices <-chan playbackdto.NoticeOutput

	db       *sqlx.DB
	playback *playbackservice.Controller
}

func New(ctx context.Context, cfg config.Config, logger hclog.Logger) (*App, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	clk := clock.SystemClock{}
	ids := id.UUID{}

	db, err := sqlitedb.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	client := apiclient.New(apiclient.Options{
		BaseURL:  cfg.APIBaseURL,
		Token:    cfg.APIToken,
		ViewerID: cfg.ViewerID,
		Timeout:  cfg.APITimeout,
		IDs:      ids,
		Logger:   logger,
	})

	snapshots, err := courseoutadapter.NewSQLiteSnapshotStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new snapshot store: %w", err)
	}
	courseUC := courseusecase.NewInteractor(courseservice.NewCourseService(
		clk,
		courseoutadapter.NewRESTCourseFetcher(client),
		snapshots,
		logger,
		cfg.ViewerID,
	))

	journal, err := progressoutadapter.NewSQLiteJournal(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new progress journal: %w", err)
	}
	progressUC := progressusecase.NewInteractor(progressservice.NewProgressService(
		clk,
		ids,
		progressoutadapter.NewRESTProgressStore(client),
		journal,
		logger,
	))

	surfaceUC := surfaceusecase.NewInteractor(surfaceservice.NewSurfaceService(
		engines(cfg, logger),
		cfg.SurfaceEngine,
		logger,
	))

	channel := playbackoutadapter.NewChannelNotifier(16)
	progressAdapter := playbackoutadapter.NewProgressAdapter(progressUC)
	controller := playbackservice.NewController(
		playbackoutadapter.NewCourseSourceAdapter(courseUC),
		progressAdapter,
		progressAdapter,
		playbackoutadapter.NewFileLocationNavigator(cfg.DataDir),
		playbackoutadapter.MultiNotifier{playbackoutadapter.NewLogNotifier(logger), channel},
		playbackoutadapter.NewSurfaceAdapter(surfaceUC, cfg.SurfaceEngine),
		logger,
	)
	playbackUC := playbackusecase.NewInteractor(controller)

	return &App{
		CourseCLI:   courseinadapter.NewCLIHandler(courseUC),
		ProgressCLI: progressinadapter.NewCLIHandler(progressUC),
		SurfaceCLI:  surfaceinadapter.NewCLIHandler(surfaceUC),
		PlaybackCLI: playbackinadapter.NewCLIHandler(playbackUC),
		PlaybackTUI: playbackinadapter.NewTUIHandler(playbackUC),
		Notices:     channel.Notices(),
		db:          db,
		playback:    controller,
	}, nil
}

// Close stops playback, waits for queued progress writes and releases the
// database.
func (a *App) Close() error {
	a.playback.Close()
	return a.db.Close()
}

func engines(cfg config.Config, logger hclog.Logger) map[string]surfaceout.Engine {
	return map[string]surfaceout.Engine{
		surfacedomain.EngineSimulated: surfaceoutadapter.NewSimulatedEngine(cfg.SampleInterval, cfg.SurfaceSpeed),
		surfacedomain.EnginePlugin:    surfaceoutadapter.NewPluginEngine(cfg.PluginBinary, cfg.SampleInterval, logger),
		surfacedomain.EngineExternal:  surfaceoutadapter.NewExternalEngine(cfg.ExternalURLBase, surfaceoutadapter.OSLauncher),
	}
}

// RunTUI opens target, or the last saved location when target is empty.
func RunTUI(app *App, target string, autoplay bool) error {
	model := uiapp.NewModel(app.PlaybackTUI, app.Notices, target, autoplay)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// DevServerOptions configure the local platform stand-in.
type DevServerOptions struct {
	Fixtures string
	Listen   string
	DBPath   string
	Token    string
}

// RunDevServer serves fixtures until ctx is cancelled.
func RunDevServer(ctx context.Context, opts DevServerOptions, logger hclog.Logger) error {
	courses, err := devserver.LoadFixtures(opts.Fixtures)
	if err != nil {
		return err
	}
	db, err := sqlitedb.Open(opts.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := devserver.NewStore(ctx, db)
	if err != nil {
		return err
	}
	srv, err := devserver.New(devserver.Options{
		Courses: courses,
		Store:   store,
		Token:   opts.Token,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	logger.Info("devserver listening", "addr", opts.Listen, "courses", len(courses))
	return srv.ListenAndServe(ctx, opts.Listen)
}
