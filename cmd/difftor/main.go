package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"difftor/internal/config"
	"difftor/internal/engine"
	"difftor/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "difftor <old_source> <new_source>",
		Short: "Compare two folders, zip files or zip URLs and write an HTML diff report",
		Long: `difftor compares two file trees and writes a single HTML report listing
added, removed, renamed and changed files with inline diffs.

Each source may be a local directory, a local .zip file or an http(s) URL
pointing at a .zip file.`,
		Args:          cobra.ExactArgs(2),
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	config.InitFlags(cmd)
	cmd.Flags().Bool("porcelain", false, "Print only the report path.")
	cmd.Flags().BoolP("verbose", "v", false, "Print debug output.")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	porcelain, _ := cmd.Flags().GetBool("porcelain")
	verbose, _ := cmd.Flags().GetBool("verbose")
	configureOutput(porcelain, verbose)

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cmd, cwd)
	if err != nil {
		return err
	}
	opt, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	svc := &engine.Service{
		Engine:   engine.New(opt),
		Resolver: cfg.Resolver(),
		Writer:   report.NewWriter(),
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pterm.Info.Printfln("Comparing %s → %s", args[0], args[1])
	res, err := svc.Compare(ctx, args[0], args[1], cfg.OutputDir)
	if err != nil {
		return err
	}

	if porcelain {
		fmt.Fprintln(cmd.OutOrStdout(), res.Path)
		return nil
	}
	pterm.Info.Printfln("%d changed, %d removed, %d added, %d renamed without diff",
		res.Entries, res.Removed, res.Added, res.Renamed)
	if st, err := os.Stat(res.Path); err == nil {
		pterm.Success.Printfln("Report written to %s (%s)", res.Path, humanize.Bytes(uint64(st.Size())))
	} else {
		pterm.Success.Printfln("Report written to %s", res.Path)
	}
	return nil
}

func configureOutput(porcelain, verbose bool) {
	if porcelain {
		pterm.DisableOutput()
		return
	}
	pterm.EnableOutput()
	if verbose {
		pterm.EnableDebugMessages()
	}
}
