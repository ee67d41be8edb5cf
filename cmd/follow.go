package cmd

import (
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/isaaclog/isaaclog/internal/classify"
	clerrors "github.com/isaaclog/isaaclog/internal/errors"
	"github.com/isaaclog/isaaclog/internal/follow"
	"github.com/isaaclog/isaaclog/internal/mirror"
	"github.com/isaaclog/isaaclog/internal/tailer"
	"github.com/isaaclog/isaaclog/internal/ui"
)

var (
	followTail      int
	followGrep      string
	followHighlight string
	noWatch         bool
)

func registerFollowFlags(c *cobra.Command) {
	def := follow.DefaultInterval

	c.Flags().StringP("file", "f", "", "Log file to follow (default: the game's log.txt for --edition)")
	c.Flags().IntVarP(&followTail, "tail", "t", 0, "Show the last N lines of the existing log before following")
	c.Flags().StringVarP(&followGrep, "grep", "g", "", "Only show lines containing this text (case-insensitive)")
	c.Flags().StringVarP(&followHighlight, "highlight", "s", "", "Highlight lines containing this text (case-insensitive)")
	c.Flags().String("edition", "", "Game edition used for the default log path (Rebirth, Afterbirth, Afterbirth+, Repentance, Repentance+)")
	c.Flags().Duration("interval", def, "Polling interval")
	c.Flags().BoolVar(&noWatch, "no-watch", false, "Disable filesystem notifications and rely on polling only")
	c.Flags().String("mirror", "", "Copy displayed lines to a file path, file:// or cloudwatch:// URI, or @alias")
	c.Flags().String("output-encoding", "", "Console encoding to check lines against (utf-8, windows-1252, iso-8859-1, cp437, cp850)")

	_ = viper.BindPFlag("log_file", c.Flags().Lookup("file"))
	_ = viper.BindPFlag("edition", c.Flags().Lookup("edition"))
	_ = viper.BindPFlag("interval", c.Flags().Lookup("interval"))
	_ = viper.BindPFlag("mirror", c.Flags().Lookup("mirror"))
	_ = viper.BindPFlag("output_encoding", c.Flags().Lookup("output-encoding"))
}

func runFollow(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	cfg := app.Config

	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, ok := ui.LookupEncoding(cfg.OutputEncoding); !ok {
		return clerrors.UnknownEncodingError(cfg.OutputEncoding, ui.EncodingNames())
	}
	if followTail < 0 {
		return clerrors.InvalidValueError("tail count", strconv.Itoa(followTail), []string{"10", "50", "200"})
	}

	path, err := cfg.ResolveLogFile()
	if err != nil {
		return err
	}
	log := app.Logger.WithField("path", path)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := tailer.New(path)
	defer func() { _ = t.Close() }()

	// Without --tail the existing history stays hidden.
	if followTail == 0 {
		if err := t.Prime(); err != nil {
			return unreadable(path, err)
		}
	}

	opts := []follow.Option{
		follow.WithFilter(classify.Filter{
			Grep:      followGrep,
			Highlight: followHighlight,
			Tail:      followTail,
		}),
		follow.WithInterval(cfg.Interval),
		follow.WithLogger(app.Logger),
	}

	if cfg.Watch {
		n, err := tailer.NewNotifier(path)
		if err != nil {
			log.WithField("error", err).Warn("file notifications unavailable, polling only")
		} else {
			defer func() { _ = n.Close() }()
			opts = append(opts, follow.WithWake(n.Wake()))
		}
	}

	if cfg.Mirror != "" {
		sink, err := mirror.Open(cfg.Mirror, mirror.OpenOptions{
			Profile: cfg.Profile,
			Region:  cfg.Region,
			Aliases: cfg.Mirrors,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				app.Render.Warning("mirror: %v", err)
			}
		}()
		opts = append(opts, follow.WithSink(sink))
		app.Debugf("Mirroring displayed lines to %s", cfg.Mirror)
	}

	if st := t.State(); st.Opened {
		app.Render.Status("Following %s (%s of history hidden, Ctrl+C to stop)...", path, humanize.Bytes(uint64(st.Size)))
	} else {
		app.Render.Status("Following %s (Ctrl+C to stop)...", path)
	}

	if err := follow.New(t, app.Render, opts...).Run(ctx); err != nil {
		return unreadable(path, err)
	}
	return nil
}

// unreadable turns a tailer failure into a message with fixes.
func unreadable(path string, err error) error {
	var fatal *tailer.FatalError
	if errors.As(err, &fatal) {
		return clerrors.UnreadableLogError(path, fatal.Err)
	}
	return err
}
