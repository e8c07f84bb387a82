package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/apigen/internal/apimodel"
	"git.home.luguber.info/inful/apigen/internal/config"
	"git.home.luguber.info/inful/apigen/internal/daemon"
	"git.home.luguber.info/inful/apigen/internal/entries"
	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
	"git.home.luguber.info/inful/apigen/internal/generate"
	"git.home.luguber.info/inful/apigen/internal/version"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"apigen.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Show version and exit"`

	Generate struct {
		DryRun  bool `help:"Render pages without promoting the output directory"`
		Preview bool `help:"Additionally write an HTML preview next to each page"`
	} `cmd:"" help:"Generate documentation pages from configured stub inventories"`

	Watch struct{} `cmd:"" help:"Watch inventories and regenerate on change"`

	Inspect struct {
		Module string `short:"m" help:"Restrict inspection to one configured module"`
	} `cmd:"" help:"List the documentation entries an inventory expands into"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Vars{"version": version.Version})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "generate":
		cfg := mustLoadConfig()
		if err := runGenerate(cfg); err != nil {
			slog.Error("Generation failed",
				"category", string(apierrors.GetCategory(err)), "error", err)
			os.Exit(1)
		}
	case "watch":
		cfg := mustLoadConfig()
		if err := runWatch(cfg); err != nil {
			slog.Error("Watch mode failed",
				"category", string(apierrors.GetCategory(err)), "error", err)
			os.Exit(1)
		}
	case "inspect":
		cfg := mustLoadConfig()
		if err := runInspect(cfg, CLI.Inspect.Module); err != nil {
			slog.Error("Inspect failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.WriteStarter(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration written", "path", CLI.Config)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "path", CLI.Config, "error", err)
		os.Exit(1)
	}
	return cfg
}

func runGenerate(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := generate.NewService().Run(ctx, generate.Request{
		Config: cfg,
		Options: generate.Options{
			DryRun:  CLI.Generate.DryRun,
			Preview: CLI.Generate.Preview,
		},
	})
	if err != nil {
		return err
	}
	slog.Info("Generation succeeded",
		"modules", result.Modules,
		"pages", result.Pages,
		"skipped", result.PagesSkipped,
		"warnings", result.Warnings,
		"duration", result.Duration)
	return nil
}

func runWatch(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return daemon.New(cfg).Run(ctx)
}

// runInspect prints the entries each inventory expands into, without
// touching the output directory.
func runInspect(cfg *config.Config, onlyModule string) error {
	for _, m := range cfg.Modules {
		if onlyModule != "" && m.Name != onlyModule {
			continue
		}
		inv, err := apimodel.Load(m.Inventory)
		if err != nil {
			return err
		}
		policy := entries.Policy{
			CaseInsensitiveFS:    cfg.CaseInsensitivePages(),
			SubscriptMethodTypes: m.SubscriptPattern(),
		}
		exp := entries.NewExpander(inv, policy)
		fmt.Printf("%s (%s)\n", inv.Module, m.Inventory)
		for i := range inv.Objects {
			if err := printEntries(exp, &inv.Objects[i], "  "); err != nil {
				return err
			}
		}
	}
	return nil
}

func printEntries(exp *entries.Expander, obj *apimodel.Object, indent string) error {
	ents, err := exp.Overloads(obj)
	if err != nil {
		return err
	}
	for _, e := range ents {
		fmt.Printf("%s%-14s %s -> %s.md\n", indent, e.Object.ObjType, e.ObjectName(), e.PageName())
	}
	if obj.ObjType != apimodel.ObjTypeClass && obj.ObjType != apimodel.ObjTypeModule {
		return nil
	}
	return printMembers(exp, obj, indent+"  ")
}

func printMembers(exp *entries.Expander, parent *apimodel.Object, indent string) error {
	members, err := exp.Members(parent)
	if err != nil {
		return err
	}
	for _, m := range members {
		marker := ""
		if m.IsInherited {
			marker = " (inherited)"
		}
		fmt.Printf("%s%-14s %s -> %s.md%s\n", indent, m.Object.ObjType, m.ObjectName(), m.PageName(), marker)
		if m.Object.ObjType == apimodel.ObjTypeClass && !m.IsInherited {
			if err := printMembers(exp, m.Object, indent+"  "); err != nil {
				return err
			}
		}
	}
	return nil
}
