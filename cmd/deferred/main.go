// Command deferred renders a TOML scene description to a PNG image.
//
// Usage:
//
//	deferred -config scene.toml -output frame.png
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/config"
)

func main() {
	var (
		scene       = flag.String("config", "scene.toml", "scene description")
		output      = flag.String("output", "frame.png", "output file")
		supersample = flag.Int("supersample", 0, "override the scene's supersampling factor")
		verbose     = flag.Bool("v", false, "log pipeline stages")
	)
	flag.Parse()

	if *verbose {
		deferred.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *scene, *output, *supersample); err != nil {
		stop()
		log.Fatalf("deferred: %v", err)
	}
}

func run(ctx context.Context, scene, output string, supersample int) error {
	cfg, err := config.Load(scene)
	if err != nil {
		return err
	}
	if supersample > 0 {
		cfg.Output.Supersample = supersample
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	w, h := cfg.RenderSize()
	r, err := deferred.New(w, h, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	frame, err := cfg.Frame()
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := r.Render(ctx, frame)
	if err != nil {
		return err
	}
	img, err := res.Scaled(cfg.Output.Width, cfg.Output.Height)
	if err != nil {
		return err
	}
	if err := deferred.SavePNG(output, img); err != nil {
		return err
	}

	log.Printf("rendered %s (%dx%d, %d triangles) in %v", output,
		cfg.Output.Width, cfg.Output.Height, res.Stats.Triangles, time.Since(start).Round(time.Millisecond))
	return nil
}
