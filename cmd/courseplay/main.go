package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"courseplay/internal/bootstrap"
	coursedto "courseplay/internal/modules/course/dto"
	playbackdto "courseplay/internal/modules/playback/dto"
	"courseplay/internal/platform/config"
	"courseplay/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "courseplay",
		Short:         "Terminal course player",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "config file (default: ./courseplay.yaml)")
	pf.StringVar(&g.envFile, "env-file", "", "dotenv file (default: ./.env when present)")
	pf.String("api-url", "", "platform API base URL")
	pf.String("token", "", "platform API bearer token")
	pf.String("viewer", "", "viewer id sent as X-Viewer-ID")
	pf.String("data-dir", "", "directory for the local database and location state")
	pf.String("engine", "", "video surface engine: simulated|plugin|external")
	pf.String("log-level", "", "log level: trace|debug|info|warn|error")

	root.AddCommand(newCourseCmd(&g))
	root.AddCommand(newPlayCmd(&g))
	root.AddCommand(newResumeCmd(&g))
	root.AddCommand(newProgressCmd(&g))
	root.AddCommand(newSectionCmd(&g))
	root.AddCommand(newSurfaceCmd(&g))
	root.AddCommand(newTUICmd(&g))
	root.AddCommand(newDevServerCmd(&g))
	return root
}

func loadConfig(cmd *cobra.Command, g *globalFlags) (config.Config, error) {
	return config.Load(config.Options{
		ConfigFile: g.configFile,
		EnvFile:    g.envFile,
		Flags:      cmd.Flags(),
	})
}

// session bundles what a command needs and releases it in reverse order.
type session struct {
	app    *bootstrap.App
	logger hclog.Logger
	close  func()
}

func openSession(cmd *cobra.Command, g *globalFlags, logOpts func(config.Config) logging.Options) (*session, error) {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return nil, err
	}
	opts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}
	if logOpts != nil {
		opts = logOpts(cfg)
	}
	logger, closeLog, err := logging.New("courseplay", opts)
	if err != nil {
		return nil, err
	}
	app, err := bootstrap.New(cmd.Context(), cfg, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	return &session{
		app:    app,
		logger: logger,
		close: func() {
			if err := app.Close(); err != nil {
				logger.Warn("close app", "error", err)
			}
			_ = closeLog()
		},
	}, nil
}

// ─── course ──────────────────────────────────────────────────────────────────

func newCourseCmd(g *globalFlags) *cobra.Command {
	course := &cobra.Command{Use: "course", Short: "Course data commands"}

	var refresh bool
	show := &cobra.Command{
		Use:   "show <course-id>",
		Short: "Print a course outline with the viewer's progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.close()

			load := s.app.CourseCLI.Show
			if refresh {
				load = s.app.CourseCLI.Refresh
			}
			snap, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	show.Flags().BoolVar(&refresh, "refresh", false, "bypass the local snapshot")
	course.AddCommand(show)
	return course
}

func printSnapshot(w io.Writer, snap coursedto.SnapshotOutput) {
	c := snap.Course
	_, _ = fmt.Fprintf(w, "%s\t%s\tstate=%s", c.ID, c.Title, snap.State)
	if snap.Stale {
		_, _ = fmt.Fprint(w, " (stale)")
	}
	_, _ = fmt.Fprintln(w)
	if snap.Err != nil {
		_, _ = fmt.Fprintf(w, "error: %v\n", snap.Err)
	}
	for _, section := range c.Sections {
		badge := ""
		if section.IsNew {
			badge = " [new]"
		}
		_, _ = fmt.Fprintf(w, "  %s\t%s%s\n", section.ID, section.Title, badge)
		for _, video := range section.Videos {
			mark := " "
			pct := 0.0
			if video.Progress != nil {
				pct = video.Progress.Percentage
				if video.Progress.Completed {
					mark = "✓"
				}
			}
			_, _ = fmt.Fprintf(w, "    %s %s\t%s\t%.0fs\t%.0f%%\n", mark, video.ID, video.Title, video.Duration, pct)
		}
	}
}

// ─── playback ────────────────────────────────────────────────────────────────

func newPlayCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "play <course-id|location>",
		Short: "Play a course headless until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.close()

			view, err := s.app.PlaybackCLI.Play(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), view)
			return waitForFinish(cmd.Context(), cmd.OutOrStdout(), s.app.Notices)
		},
	}
}

func newResumeCmd(g *globalFlags) *cobra.Command {
	var play bool
	resume := &cobra.Command{
		Use:   "resume",
		Short: "Reopen the last saved location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.close()

			view, err := s.app.PlaybackCLI.Resume(cmd.Context(), play)
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), view)
			if !play {
				return nil
			}
			return waitForFinish(cmd.Context(), cmd.OutOrStdout(), s.app.Notices)
		},
	}
	resume.Flags().BoolVar(&play, "play", false, "keep playing until the course finishes")
	return resume
}

func printView(w io.Writer, view playbackdto.SessionView) {
	_, _ = fmt.Fprintf(w, "course=%s title=%q state=%s location=%s\n", view.CourseID, view.CourseTitle, view.State, view.Location)
	if view.Active == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "video=%s (%d/%d) title=%q resume=%.0fs\n",
		view.Active.ID, view.ActiveIndex+1, view.Total, view.Active.Title, view.ResumePosition)
}

// waitForFinish prints notices until the course finishes or ctx is cancelled.
func waitForFinish(ctx context.Context, w io.Writer, notices <-chan playbackdto.NoticeOutput) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notices:
			if !ok {
				return nil
			}
			switch n.Kind {
			case playbackdto.NoticeLessonFinished:
				_, _ = fmt.Fprintf(w, "lesson finished: %s, next: %s\n", n.VideoID, n.NextVideoID)
			case playbackdto.NoticeCourseFinished:
				_, _ = fmt.Fprintf(w, "course finished: %s\n", n.CourseID)
				return nil
			}
		}
	}
}

// ─── progress ────────────────────────────────────────────────────────────────

func newProgressCmd(g *globalFlags) *cobra.Command {
	progress := &cobra.Command{Use: "progress", Short: "Progress store commands"}

	var position, percent float64
	set := &cobra.Command{
		Use:   "set <video-id> --position <seconds> --percent <0..100>",
		Short: "Report a watch position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.close()
			out, err := s.app.ProgressCLI.Set(cmd.Context(), args[0], position, percent)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "video=%s position=%.0f percent=%.1f accepted=%t\n", args[0], position, percent, out.Accepted)
			return nil
		},
	}
	set.Flags().Float64Var(&position, "position", 0, "position in seconds")
	set.Flags().Float64Var(&percent, "percent", 0, "watched percentage")

	complete := &cobra.Command{
		Use:   "complete <video-id>",
		Short: "Mark a video completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.app.ProgressCLI.Complete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "video=%s completed\n", args[0])
			return nil
		},
	}

	var limit int
	log := &cobra.Command{
		Use:   "log",
		Short: "Show the local journal of progress writes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.close()
			entries, err := s.app.ProgressCLI.Log(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no entries")
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s\t%s\t%s\t%.0fs\t%.1f%%\t%s",
					e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), e.Kind, e.TargetID, e.LastPosition, e.Percentage, e.Outcome)
				if e.Error != "" {
					line += "\t" + e.Error
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	log.Flags().IntVar(&limit, "limit", 20, "number of entries")

	progress.AddCommand(set, complete, log)
	return progress
}

func newSectionCmd(g *globalFlags) *cobra.Command {
	section := &cobra.Command{Use: "section", Short: "Section commands"}
	section.AddCommand(&cobra.Command{
		Use:   "seen <section-id>",
		Short: "Acknowledge a new section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.app.ProgressCLI.MarkSectionSeen(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "section=%s seen\n", args[0])
			return nil
		},
	})
	return section
}

// ─── surface ─────────────────────────────────────────────────────────────────

func newSurfaceCmd(g *globalFlags) *cobra.Command {
	surface := &cobra.Command{Use: "surface", Short: "Video surface commands"}

	var engine string
	doctor := &cobra.Command{
		Use:   "doctor",
		Short: "Check a playback engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.close()
			out, err := s.app.SurfaceCLI.Doctor(cmd.Context(), engine)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "engine=%s name=%s version=%s healthy=%t\n", out.Engine, out.Name, out.Version, out.Healthy)
			if len(out.Capabilities) > 0 {
				_, _ = fmt.Fprintf(w, "capabilities=%s\n", strings.Join(out.Capabilities, ","))
			}
			if out.Binary != "" {
				_, _ = fmt.Fprintf(w, "binary=%s sha256=%s\n", out.Binary, out.SHA256)
			}
			if !out.Healthy {
				return errors.New(out.Error)
			}
			return nil
		},
	}
	doctor.Flags().StringVar(&engine, "engine-name", "", "engine to check (default: configured engine)")

	engines := &cobra.Command{
		Use:   "engines",
		Short: "List playback engines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, g, nil)
			if err != nil {
				return err
			}
			defer s.close()
			for _, name := range s.app.SurfaceCLI.Engines() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	surface.AddCommand(doctor, engines)
	return surface
}

// ─── tui ─────────────────────────────────────────────────────────────────────

func newTUICmd(g *globalFlags) *cobra.Command {
	var autoplay bool
	tui := &cobra.Command{
		Use:   "tui [course-id|location]",
		Short: "Open the course page in the terminal UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs must never reach the screen while the UI owns it.
			s, err := openSession(cmd, g, func(cfg config.Config) logging.Options {
				file := cfg.LogFile
				if file == "" {
					file = filepath.Join(cfg.DataDir, "courseplay.log")
				}
				return logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: file}
			})
			if err != nil {
				return err
			}
			defer s.close()

			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return bootstrap.RunTUI(s.app, target, autoplay)
		},
	}
	tui.Flags().BoolVar(&autoplay, "autoplay", true, "start the video surface on open")
	return tui
}

// ─── devserver ───────────────────────────────────────────────────────────────

func newDevServerCmd(g *globalFlags) *cobra.Command {
	var opts bootstrap.DevServerOptions
	dev := &cobra.Command{
		Use:   "devserver --fixtures <courses.yaml>",
		Short: "Serve course fixtures as a local platform API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.Fixtures) == "" {
				return fmt.Errorf("--fixtures is required")
			}
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			logger, closeLog, err := logging.New("courseplay", logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()
			if opts.DBPath == "" {
				opts.DBPath = filepath.Join(cfg.DataDir, "devserver.db")
			}
			return bootstrap.RunDevServer(cmd.Context(), opts, logger)
		},
	}
	dev.Flags().StringVar(&opts.Fixtures, "fixtures", "", "YAML course fixtures")
	dev.Flags().StringVar(&opts.Listen, "listen", ":8080", "listen address")
	dev.Flags().StringVar(&opts.DBPath, "db", "", "progress database (default: <data-dir>/devserver.db)")
	dev.Flags().StringVar(&opts.Token, "require-token", "", "bearer token clients must send")
	return dev
}
