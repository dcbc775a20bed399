package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/config"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/convert"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/log"
)

var convertFlags = []cli.Flag{
	&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML file with the settings"},
	&cli.StringFlag{Name: "name", Usage: "application name, up to 8 letters and digits"},
	&cli.StringFlag{Name: "base-app", Usage: "player code starting the first page"},
	&cli.StringFlag{Name: "frames-dir", Usage: "directory holding the rasterised frames"},
	&cli.StringFlag{Name: "frame-pattern", Usage: "frame file name, with %d for the frame number"},
	&cli.StringFlag{Name: "audio", Usage: "16-bit PCM WAV file"},
	&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "application image to write"},
	&cli.Float64Flag{Name: "fps", Usage: "frame rate of the source frames"},
	&cli.IntFlag{Name: "start", Usage: "first output frame"},
	&cli.IntFlag{Name: "duration", Usage: "number of output frames, 0 for all"},
	&cli.IntFlag{Name: "total-frames", Usage: "number of source frames, 0 to poll until they stop"},
	&cli.IntFlag{Name: "cycle-budget", Usage: "cycles the player may spend on one frame"},
	&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "frames compressed in parallel"},
	&cli.IntFlag{Name: "samples-per-frame", Usage: "audio samples played per frame"},
	&cli.DurationFlag{Name: "poll-interval", Usage: "time between checks for new frames"},
	&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, or error"},
	&cli.StringFlag{Name: "log-format", Usage: "console or json"},
	&cli.StringFlag{Name: "stats-csv", Usage: "write per-frame statistics to this file"},
	&cli.StringFlag{Name: "dump-dir", Usage: "write gzipped raw and compressed frames here"},
	&cli.BoolFlag{Name: "sign", Usage: "sign the application once it's written"},
	&cli.StringFlag{Name: "sign-command", Usage: "signing program"},
	&cli.StringFlag{Name: "devices-csv", Usage: "device table replacing the built-in one"},
}

// loadConfig reads the config file, if any, then applies the flags that were
// given explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	setString := func(name string, target *string) {
		if c.IsSet(name) {
			*target = c.String(name)
		}
	}
	setInt := func(name string, target *int) {
		if c.IsSet(name) {
			*target = c.Int(name)
		}
	}

	setString("name", &cfg.Name)
	setString("base-app", &cfg.BaseApp)
	setString("frames-dir", &cfg.FramesDir)
	setString("frame-pattern", &cfg.FramePattern)
	setString("audio", &cfg.AudioPath)
	setString("output", &cfg.OutputPath)
	setString("log-level", &cfg.LogLevel)
	setString("log-format", &cfg.LogFormat)
	setString("stats-csv", &cfg.StatsPath)
	setString("dump-dir", &cfg.DumpDir)
	setString("sign-command", &cfg.SignCommand)
	setString("devices-csv", &cfg.DevicesPath)
	setInt("start", &cfg.Start)
	setInt("duration", &cfg.Duration)
	setInt("total-frames", &cfg.TotalFrames)
	setInt("cycle-budget", &cfg.CycleBudget)
	setInt("workers", &cfg.Workers)
	setInt("samples-per-frame", &cfg.SamplesPerFrame)
	if c.IsSet("fps") {
		cfg.FPS = c.Float64("fps")
	}
	if c.IsSet("poll-interval") {
		cfg.PollInterval = config.Duration{Duration: c.Duration("poll-interval")}
	}
	if c.IsSet("sign") {
		cfg.Sign = c.Bool("sign")
	}
	return cfg, nil
}

func convertVideo(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	err = cfg.Validate()
	if err != nil {
		return err
	}

	logger, err := log.NewLogger(cfg.LogLevel, log.Format(cfg.LogFormat))
	if err != nil {
		return err
	}
	defer logger.Sync()

	progress := log.NewProgressObserver(logger)
	progress.TotalFrames = cfg.TotalFrames

	started := time.Now()
	result, err := convert.Run(c.Context, cfg, convert.Dependencies{Observer: progress})
	if err != nil {
		logger.Sugar().Errorf("conversion failed: %s", err)
		return err
	}
	if result.Warnings != nil {
		logger.Sugar().Warnf("%d frames are over the cycle budget and will play slowly", result.BudgetMisses)
	}

	fmt.Fprintf(
		c.App.Writer,
		"Wrote %d frames in %d pages to %s in %s.\n",
		result.Frames,
		result.Pages,
		cfg.OutputPath,
		time.Since(started).Round(time.Millisecond),
	)

	if len(result.Devices) == 0 {
		fmt.Fprintln(c.App.Writer, "The application is too large for any known calculator.")
		return nil
	}
	names := make([]string, len(result.Devices))
	for i, device := range result.Devices {
		names[i] = device.Name
	}
	fmt.Fprintf(c.App.Writer, "Fits on: %s\n", strings.Join(names, ", "))
	return nil
}
