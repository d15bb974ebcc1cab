package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelechi-madu/ratesheet/internal/common"
	"github.com/kelechi-madu/ratesheet/internal/convert"
	"github.com/kelechi-madu/ratesheet/internal/credential"
	"github.com/kelechi-madu/ratesheet/internal/extract/gemini"
	"github.com/kelechi-madu/ratesheet/internal/imaging"
	"github.com/kelechi-madu/ratesheet/internal/platform"
	"github.com/kelechi-madu/ratesheet/internal/render"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	var (
		outPath   = flag.String("o", "", "output PDF path (default: <image>.pdf)")
		xlsxPath  = flag.String("xlsx", "", "also export items to this XLSX path")
		manualKey = flag.String("key", "", "manually entered API key (saved for the session)")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ratesheet [-o out.pdf] [-xlsx out.xlsx] [-key KEY] <image>")
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()

	store, err := credential.NewStore(cfg.Credential.StorePath, logger)
	if err != nil {
		logger.Error("open credential store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close credential store", "error", err)
		}
	}()

	caps := platform.Detect(cfg.Credential.HelperCommand, logger)
	resolver := credential.NewResolver(cfg.Extraction.APIKey, caps, store, logger)

	if *manualKey != "" {
		if err := resolver.SubmitManual(ctx, *manualKey); err != nil {
			logger.Error("submit API key", "error", err)
			os.Exit(2)
		}
	} else if resolver.Resolve(ctx) != credential.StateReady {
		logger.Error("no API key resolved; set GEMINI_API_KEY, configure a credential helper, or pass -key")
		os.Exit(2)
	}

	client := gemini.NewClient(gemini.Config{
		BaseURL: cfg.Extraction.BaseURL,
		Model:   cfg.Extraction.Model,
		Timeout: cfg.Extraction.Timeout,
	}, logger)
	orch := convert.NewOrchestrator(resolver, client, logger)

	payload, err := imaging.LoadPayload(imagePath)
	if err != nil {
		logger.Error("load image", "path", imagePath, "error", err)
		os.Exit(1)
	}
	orch.SetImage(imagePath, payload)

	state, err := orch.Convert(ctx)
	if err != nil {
		if resolver.State() == credential.StateAwaitingInput {
			logger.Error("API key rejected", "message", resolver.Message())
		} else {
			logger.Error("conversion failed", "error", err)
		}
		os.Exit(1)
	}

	font, err := render.ParseFontFamily(cfg.Render.FontFamily)
	if err != nil {
		logger.Error("invalid font family", "error", err)
		os.Exit(2)
	}
	color, err := render.ParseHexColor(cfg.Render.TextColor)
	if err != nil {
		logger.Error("invalid text color", "error", err)
		os.Exit(2)
	}

	doc := render.FromNoteContent(*state.Result)
	opts := render.Options{
		Title:          strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath)),
		TextColor:      color,
		Font:           font,
		Bold:           cfg.Render.Bold,
		Italic:         cfg.Render.Italic,
		CurrencySymbol: cfg.Render.CurrencySymbol,
	}

	pdfBytes, err := render.RenderPDF(doc, opts)
	if err != nil {
		logger.Error("render pdf", "error", err)
		os.Exit(1)
	}
	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".pdf"
	}
	if err := os.WriteFile(out, pdfBytes, 0o644); err != nil {
		logger.Error("write pdf", "path", out, "error", err)
		os.Exit(1)
	}
	logger.Info("pdf written", "path", out, "bytes", len(pdfBytes), "items", len(doc.Items), "shareable", caps.CanShare())

	if *xlsxPath != "" {
		xlsxBytes, err := render.ExportItemsXLSX(doc)
		if err != nil {
			logger.Error("export xlsx", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxPath, xlsxBytes, 0o644); err != nil {
			logger.Error("write xlsx", "path", *xlsxPath, "error", err)
			os.Exit(1)
		}
		logger.Info("xlsx written", "path", *xlsxPath, "bytes", len(xlsxBytes))
	}
}
