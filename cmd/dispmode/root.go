// dispmode is the automation front end for the display-link subsystem.
// All decisions live in the use cases; commands only parse flags and
// print results.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/application/usecase"
	"github.com/nfries/dispmode/internal/config"
	"github.com/nfries/dispmode/internal/domain/entity"
	"github.com/nfries/dispmode/internal/infrastructure/command"
	"github.com/nfries/dispmode/internal/infrastructure/journal"
	"github.com/nfries/dispmode/internal/infrastructure/linkcontrol"
	"github.com/nfries/dispmode/internal/infrastructure/privileged"
	"github.com/nfries/dispmode/internal/infrastructure/registry"
	"github.com/nfries/dispmode/internal/infrastructure/store"
	"github.com/nfries/dispmode/internal/logging"
)

// displayFlags identify the target display on every display-facing
// command. Resolution and identity flags feed the scanner's matching
// fallbacks when the numeric ID alone is not enough.
type displayFlags struct {
	id      uint32
	uuid    string
	vendor  uint32
	product uint32
	width   int
	height  int
	refresh float64
}

func (f *displayFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint32Var(&f.id, "display", 1, "display-server display ID")
	cmd.Flags().StringVar(&f.uuid, "uuid", "", "display device UUID")
	cmd.Flags().Uint32Var(&f.vendor, "vendor", 0, "display vendor ID")
	cmd.Flags().Uint32Var(&f.product, "product", 0, "display product ID")
	cmd.Flags().IntVar(&f.width, "width", 0, "current width in pixels")
	cmd.Flags().IntVar(&f.height, "height", 0, "current height in pixels")
	cmd.Flags().Float64Var(&f.refresh, "refresh", 0, "current refresh rate in Hz")
}

func (f *displayFlags) ref() entity.DisplayRef {
	return entity.DisplayRef{
		ID:        f.id,
		VendorID:  f.vendor,
		ProductID: f.product,
		UUID:      f.uuid,
		WidthPx:   f.width,
		HeightPx:  f.height,
		RefreshHz: f.refresh,
	}
}

// deps bundles the wired adapters commands pull from.
type deps struct {
	cfg     *config.Config
	ctx     context.Context
	scanner port.ModeScanner
	accessr port.StoreAccessor
	writer  port.PrivilegedWriter
	link    port.LinkControl
	power   port.DisplayPower
	journal port.ApplyJournal
	closeFn func()
}

func buildDeps() (*deps, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	logger := logging.NewFromEnv()
	ctx := logging.WithContext(context.Background(), logger)

	runner := command.New()
	accessor := store.NewAccessor(cfg.StorePath)
	// The broker's calls can block on an interactive password prompt, so
	// they get their own runner instead of the short-timeout one.
	broker := privileged.NewOSAScriptBroker(command.NewWithTimeout(privileged.PromptTimeout))
	session := privileged.NewAuthSession(broker, "dispmode needs to update the display configuration store.")

	d := &deps{
		cfg:     cfg,
		ctx:     ctx,
		scanner: registry.NewScanner(registry.NewIORegGateway(runner, cfg.Tools.IOReg)),
		accessr: accessor,
		writer:  privileged.NewWriter(session, broker, cfg.StorePath),
		link:    linkcontrol.NewHelperControl(runner, cfg.Tools.LinkHelper),
		power:   linkcontrol.NewSessionPower(runner),
		closeFn: func() {},
	}

	if cfg.JournalPath != "" {
		j, err := journal.Open(ctx, cfg.JournalPath)
		if err != nil {
			logger.Warn().Err(err).Msg("apply journal unavailable, continuing without it")
		} else {
			d.journal = j
			d.closeFn = func() { _ = j.Close() }
		}
	}
	return d, nil
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dispmode",
		Short:         "Negotiate and persist display link configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(modesCmd(), currentCmd(), setCmd(), journalCmd(), configCmd())
	return root
}

// parseMode reads the four mode flags into a ColorMode.
func parseMode(encoding string, depth int, colorRange, dynamic string) (entity.ColorMode, error) {
	m := entity.ColorMode{
		Encoding: entity.PixelEncoding(strings.ToLower(encoding)),
		Depth:    entity.BitDepth(depth),
		Range:    entity.ColorRange(strings.ToLower(colorRange)),
		Dynamic:  entity.DynamicRange(strings.ToLower(dynamic)),
	}
	if !m.Valid() {
		return entity.ColorMode{}, fmt.Errorf("invalid mode %q/%d/%q/%q", encoding, depth, colorRange, dynamic)
	}
	return m, nil
}

func modesCmd() *cobra.Command {
	var flags displayFlags
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List the link configurations the display supports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.closeFn()

			modes, err := usecase.NewListModesUseCase(d.scanner).Execute(d.ctx, flags.ref())
			if err != nil {
				return err
			}
			if len(modes) == 0 {
				cmd.Println("no mode information available for this display")
				return nil
			}
			for _, m := range modes {
				cmd.Println(m.String())
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func currentCmd() *cobra.Command {
	var flags displayFlags
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the link configuration currently active",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.closeFn()

			mode, err := usecase.NewCurrentModeUseCase(d.scanner, d.accessr).Execute(d.ctx, flags.ref())
			if err != nil {
				return err
			}
			if mode == nil {
				cmd.Println("current mode unknown")
				return nil
			}
			cmd.Println(mode.String())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func setCmd() *cobra.Command {
	var flags displayFlags
	var encoding, colorRange, dynamic string
	var depth int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Persist and apply a link configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := parseMode(encoding, depth, colorRange, dynamic)
			if err != nil {
				return err
			}
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.closeFn()

			uc := usecase.NewSetModeUseCase(d.accessr, d.writer, d.link, d.power, d.journal)
			out, err := uc.Execute(d.ctx, usecase.SetModeInput{Ref: flags.ref(), Mode: mode})
			if err != nil {
				return err
			}
			if out.Instant {
				cmd.Println("mode applied")
			} else {
				cmd.Println("mode applied via display reconnect (a brief display flicker occurred)")
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&encoding, "encoding", "rgb444", "pixel encoding: rgb444, ycbcr444, ycbcr422, ycbcr420")
	cmd.Flags().IntVar(&depth, "depth", 8, "bits per component: 6, 8, 10, 12")
	cmd.Flags().StringVar(&colorRange, "range", "full", "quantization range: limited, full")
	cmd.Flags().StringVar(&dynamic, "dynamic", "sdr", "dynamic range: sdr, hdr10")
	return cmd
}

func journalCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recently applied link configurations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.closeFn()

			if d.journal == nil {
				return fmt.Errorf("apply journal is disabled (set journal_path in config)")
			}
			recs, err := d.journal.Recent(d.ctx, limit)
			if err != nil {
				return err
			}
			for _, r := range recs {
				how := "instant"
				if !r.Instant {
					how = "reconnect"
				}
				cmd.Printf("%s  display=%s  %s  (%s)\n",
					r.AppliedAt.Format("2006-01-02 15:04:05"), r.DisplayUUID, r.Mode.String(), how)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := config.Schema()
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	})
	return cmd
}
