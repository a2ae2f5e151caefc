package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/brettbedarf/filetree/adapters"
	"github.com/brettbedarf/filetree/config"
	"github.com/brettbedarf/filetree/filesystem"
	"github.com/brettbedarf/filetree/internal/metrics"
	"github.com/brettbedarf/filetree/internal/util"
	"github.com/brettbedarf/filetree/ordering"
	"github.com/brettbedarf/filetree/requests"
	"github.com/brettbedarf/filetree/server"
)

func main() {
	app := cli.App{
		Name:  "filetree",
		Usage: "build, validate and export in-memory file trees",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML or JSON config file",
				EnvVars: []string{"FILETREE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "nodes",
				Aliases: []string{"n"},
				Usage:   "path to a YAML or JSON nodes manifest",
				EnvVars: []string{"FILETREE_NODES"},
			},
			&cli.IntFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log verbosity between 1 (error) and 5 (trace)",
				Value:   config.InfoVerbose,
			},
			&cli.StringFlag{
				Name:  "ordering",
				Usage: fmt.Sprintf("sibling ordering policy (one of %v)", ordering.Names()),
			},
		},
		Before: func(cctx *cli.Context) error {
			util.InitializeLogger(util.VerbosityToLevel(cctx.Int("verbose")))
			// Register all built-in content sources
			adapters.RegisterBuiltins()
			return nil
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "check",
			Usage:  "load the manifest and validate the resulting tree",
			Action: runCheck,
		},
		{
			Name:  "print",
			Usage: "load the manifest and print the tree",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "style",
					Usage: `"paths" prints every path in preorder, "tree" draws branches`,
					Value: "paths",
				},
			},
			Action: runPrint,
		},
		{
			Name:      "mount",
			Usage:     "load the manifest and mount a read-only snapshot",
			ArgsUsage: "<mountpoint>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "umount",
					Aliases: []string{"u"},
					Usage:   "unmount the mountpoint first if needed; useful for debuggers that don't exit properly",
				},
				&cli.StringFlag{
					Name:    "metrics-addr",
					Usage:   "serve Prometheus metrics on this address, i.e. :9090",
					EnvVars: []string{"FILETREE_METRICS_ADDR"},
				},
			},
			Action: runMount,
		},
	}
	app.RunAndExitOnError()
}

func loadConfig(cctx *cli.Context) (*config.Config, error) {
	cfg := config.NewConfig(nil)
	if path := cctx.String("config"); path != "" {
		var err error
		if cfg, err = config.NewConfigFromFile(path); err != nil {
			return nil, err
		}
	}
	override := &config.ConfigOverride{}
	if cctx.IsSet("verbose") {
		override.LogLvl = util.Pointer(cctx.Int("verbose"))
	}
	if cctx.IsSet("ordering") {
		override.Ordering = util.Pointer(cctx.String("ordering"))
	}
	cfg.Merge(override)
	util.InitializeLogger(cfg.LogLvl)
	return cfg, nil
}

// buildTree creates a tree from the nodes manifest. Manifest entries that
// fail are logged and skipped.
func buildTree(cctx *cli.Context) (*filesystem.Tree, *config.Config, error) {
	logger := util.GetLogger("main")

	cfg, err := loadConfig(cctx)
	if err != nil {
		return nil, nil, err
	}
	tree, err := filesystem.NewTree(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := tree.Init(); err != nil {
		return nil, nil, err
	}

	nodesDef := cctx.String("nodes")
	if nodesDef == "" {
		logger.Warn().Msg("No nodes manifest provided")
		return tree, cfg, nil
	}
	m, err := requests.LoadManifest(nodesDef)
	if m == nil {
		return nil, nil, err
	}
	if err != nil {
		logger.Error().Err(err).Str("nodes", nodesDef).Msg("Skipped invalid manifest entries")
	}
	if _, err := requests.Apply(cctx.Context, tree, m); err != nil {
		logger.Error().Err(err).Msg("Failed to add some requests")
	}
	logger.Info().Str("tree", tree.ID().String()).Int("nodes", tree.Count()).Msg("Tree loaded")
	return tree, cfg, nil
}

func runCheck(cctx *cli.Context) error {
	tree, _, err := buildTree(cctx)
	if err != nil {
		return err
	}
	if err := tree.Check(); err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Printf("valid tree with %d node(s)\n", tree.Count())
	return nil
}

func runPrint(cctx *cli.Context) error {
	tree, _, err := buildTree(cctx)
	if err != nil {
		return err
	}
	switch style := cctx.String("style"); style {
	case "paths":
		fmt.Print(tree.String())
	case "tree":
		fmt.Print(tree.Render())
	default:
		return cli.Exit(fmt.Sprintf("unknown print style %q", style), 1)
	}
	return nil
}

func runMount(cctx *cli.Context) error {
	logger := util.GetLogger("main")

	mnt := cctx.Args().First()
	if mnt == "" {
		return cli.Exit("mount point not specified; it must be passed as the argument", 1)
	}
	if cctx.Bool("umount") {
		cmd := exec.Command("fusermount", "-u", mnt)
		// we ignore error here if not already mounted
		cmd.Run() // nolint:errcheck
	}

	tree, cfg, err := buildTree(cctx)
	if err != nil {
		return err
	}

	if addr := cctx.String("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			logger.Info().Str("addr", addr).Msg("Serving metrics")
			if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	m, err := server.New(cfg, tree)
	if err != nil {
		return err
	}
	if err := m.Serve(mnt); err != nil {
		return fmt.Errorf("failed to mount filesystem: %w", err)
	}
	logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

	if err := m.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
		return err
	}
	logger.Info().Msg("Filesystem unmounted successfully")
	return nil
}
