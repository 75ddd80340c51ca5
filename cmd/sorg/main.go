// Command sorg renders an org-mode document into a static site.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/annieversary/sorg/internal/build"
	"github.com/annieversary/sorg/internal/config"
	"github.com/annieversary/sorg/internal/logfields"
	"github.com/annieversary/sorg/internal/server"
	"github.com/annieversary/sorg/internal/watch"
)

var cli struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Build struct {
		Path string `arg:"" optional:"" default:"./blog.org" help:"Org document to build"`
	} `cmd:"" help:"Build the site for release; headings with not-done keywords are excluded"`

	Serve struct {
		Path string `arg:"" optional:"" default:"./blog.org" help:"Org document to build"`
		Port int    `default:"8080" help:"Port for the dev server"`
	} `cmd:"" help:"Build a preview (drafts under review included) and serve it"`

	Watch struct {
		Path       string `arg:"" optional:"" default:"./blog.org" help:"Org document to build"`
		Port       int    `default:"8080" help:"Port for the dev server"`
		ReloadPort int    `default:"2794" help:"Port for the browser reload websocket"`
	} `cmd:"" help:"Serve a preview and rebuild whenever the document, templates, or assets change"`

	Folders struct {
		Path string `arg:"" optional:"" default:"./blog.org" help:"Org document to read"`
	} `cmd:"" help:"Create the folder skeleton mirroring the page tree, without rendering"`

	Init struct {
		Dir   string `arg:"" optional:"" default:"." help:"Directory to scaffold the site in"`
		Force bool   `help:"Overwrite existing files"`
	} `cmd:"" help:"Scaffold a starter document, templates, and static directory"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("sorg"),
		kong.Description("org-mode static site generator"))

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd := strings.Fields(kctx.Command())[0]; cmd {
	case "build":
		// Release build: not-done headings are excluded from the output.
		err = build.Run(ctx, config.Options{
			Path:    cli.Build.Path,
			Release: true,
			Verbose: cli.Verbose,
		}, logger)
	case "serve":
		err = runServe(ctx, logger)
	case "watch":
		err = runWatch(ctx, logger)
	case "folders":
		err = build.Folders(ctx, config.Options{Path: cli.Folders.Path, Verbose: cli.Verbose}, logger)
	case "init":
		err = runInit(cli.Init.Dir, cli.Init.Force, logger)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		logger.Error("command failed", logfields.Error(err))
		os.Exit(1)
	}
}

func runServe(ctx context.Context, logger *slog.Logger) error {
	opts := config.Options{
		Path:    cli.Serve.Path,
		Verbose: cli.Verbose,
		Port:    cli.Serve.Port,
	}
	st, err := build.RunWithState(ctx, opts, logger)
	if err != nil {
		return err
	}
	return server.New(st.Config.BuildDir, st.Config.Port, logger).ListenAndServe(ctx)
}

func runWatch(ctx context.Context, logger *slog.Logger) error {
	opts := config.Options{
		Path:       cli.Watch.Path,
		HotReload:  true,
		Verbose:    cli.Verbose,
		Port:       cli.Watch.Port,
		ReloadPort: cli.Watch.ReloadPort,
	}
	st, err := build.RunWithState(ctx, opts, logger)
	if err != nil {
		return err
	}

	hub := watch.NewHub(logger)
	watcher, err := watch.New(st.Config, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	errCh := make(chan error, 3)
	go func() {
		errCh <- hub.ListenAndServe(ctx, st.Config.ReloadPort)
	}()
	go func() {
		errCh <- server.New(st.Config.BuildDir, st.Config.Port, logger).ListenAndServe(ctx)
	}()
	go func() {
		errCh <- watcher.Run(ctx, func(rctx context.Context) error {
			if _, err := build.RunWithState(rctx, opts, logger); err != nil {
				return err
			}
			hub.Broadcast()
			return nil
		})
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
