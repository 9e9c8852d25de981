package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"product-docs-rag/internal/config"
	"product-docs-rag/internal/helper"
	"product-docs-rag/internal/logger"
	"product-docs-rag/internal/models"
	"product-docs-rag/internal/parser"
	"product-docs-rag/internal/rag"
	"product-docs-rag/internal/setup"
	"product-docs-rag/internal/source"
)

const configFilePath = "./configs/config.yaml"

type options struct {
	configPath string
	ingest     bool
	filePath   string
	category   string
	dryRun     bool
	query      string
	product    string
	search     string
	ask        string
	initDB     bool
	stats      bool
	exportPath string
	exportKey  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", configFilePath, "Path to the YAML config file")
	flag.BoolVar(&opts.ingest, "ingest", false, "Re-index every document under the documents root")
	flag.StringVar(&opts.filePath, "file", "", "Ingest a single document file")
	flag.StringVar(&opts.category, "category", "", "Category for -file (defaults to the folder name)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "With -file, print the chunks instead of storing them")
	flag.StringVar(&opts.query, "query", "", "Search the documents and print the formatted results")
	flag.StringVar(&opts.product, "product", "", "Product hint for -query")
	flag.StringVar(&opts.search, "search", "", "Plain semantic search over all categories")
	flag.StringVar(&opts.ask, "ask", "", "Ask the assistant a question")
	flag.BoolVar(&opts.initDB, "init-db", false, "Create the pgvector extension, table and search functions")
	flag.BoolVar(&opts.stats, "stats", false, "Print the number of stored chunks")
	flag.StringVar(&opts.exportPath, "export", "", "Export the local chromem collection to this file")
	flag.StringVar(&opts.exportKey, "export-key", "", "Encryption key for -export")
	flag.Parse()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	logger.Setup(cfg.LogLevel, cfg.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.filePath != "" && opts.dryRun {
		if err := dryRun(cfg, opts.filePath, opts.category); err != nil {
			log.Fatal().Err(err).Msg("Dry run failed")
		}
		return
	}

	if err := run(ctx, cfg, opts); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	deps, err := setup.Wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing store")
		}
	}()

	switch {
	case opts.initDB:
		return deps.InitSchema(ctx)

	case opts.ingest:
		files, err := source.Walk(cfg.Ingest.RootDir)
		if err != nil {
			return err
		}
		batch, err := deps.Pipeline.Reindex(ctx, files)
		if err != nil {
			return err
		}
		if batch.Ingested() == 0 && len(files) > 0 {
			return errors.New("no document could be ingested")
		}
		return nil

	case opts.filePath != "":
		text, err := parser.ExtractText(opts.filePath)
		if err != nil {
			return err
		}
		f := source.NewFile(opts.filePath)
		report := deps.Pipeline.IngestDocument(ctx, models.SourceDocument{
			Text:     text,
			Source:   f.Name,
			Path:     f.Path,
			Category: opts.category,
			Folder:   f.Folder,
		})
		return report.Err

	case opts.query != "":
		fmt.Println(deps.Retriever.Retrieve(ctx, opts.product, opts.query))
		return nil

	case opts.search != "":
		results, err := deps.Retriever.SemanticSearch(ctx, opts.search, cfg.RAG.SearchThreshold)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No documents found above the similarity threshold.")
			return nil
		}
		fmt.Println(rag.FormatResults(results))
		return nil

	case opts.ask != "":
		assistant, err := deps.NewAssistant()
		if err != nil {
			return err
		}
		answer, err := assistant.Answer(ctx, opts.ask)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil

	case opts.stats:
		n, err := deps.Store.Count(ctx)
		if err != nil {
			return err
		}
		helper.PrettyPrint(map[string]any{
			"backend": cfg.Store.Backend,
			"chunks":  n,
		})
		return nil

	case opts.exportPath != "":
		return deps.Export(opts.exportPath, opts.exportKey)
	}

	flag.Usage()
	return nil
}

// dryRun shows how a document would be chunked without touching the store
// or the embedding model.
func dryRun(cfg *config.Config, path, category string) error {
	text, err := parser.ExtractText(path)
	if err != nil {
		return err
	}
	f := source.NewFile(path)
	chunks, err := setup.PreviewChunks(cfg, models.SourceDocument{
		Text:     text,
		Source:   f.Name,
		Path:     f.Path,
		Category: category,
		Folder:   f.Folder,
	})
	if err != nil {
		return err
	}
	log.Info().Str("source", f.Name).Int("count", len(chunks)).Msg("Chunked document")
	helper.PrettyPrint(chunks)
	return nil
}
