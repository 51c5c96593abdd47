// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/papervault/papervault"
	"github.com/papervault/papervault/ai"
	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/ingestion"
	"github.com/papervault/papervault/reembed"
	"github.com/papervault/papervault/search"
)

func main() {
	app := &cli.App{
		Name:  "papervault",
		Usage: "Semantic search over PDF research papers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest one or more PDF files into the index",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					dbFlag(),
					embeddingHostFlag(),
					embeddingModelFlag(),
					&cli.DurationFlag{
						Name:  "extraction-budget",
						Usage: "Wall-clock budget for extracting one PDF",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					embeddingHostFlag(),
					embeddingModelFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
					&cli.StringFlag{
						Name:  "document",
						Usage: "Restrict the search to one document ID",
					},
					&cli.StringFlag{
						Name:  "section",
						Usage: "Restrict the search to one section (e.g. abstract, results)",
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show ingestion status of stored documents",
				ArgsUsage: "[DOCUMENT_ID]",
				Action:    statusCommand,
				Flags: []cli.Flag{
					dbFlag(),
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all indexed chunks with a new embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					dbFlag(),
					embeddingHostFlag(),
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed batches",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory",
		Value:   "./papervault_db",
	}
}

func embeddingHostFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "embedding-host",
		Usage: "Embedding service host URL",
		Value: "http://localhost:11434/v1",
	}
}

func embeddingModelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "embedding-model",
		Usage: "Embedding model name",
		Value: "all-minilm",
	}
}

func openDatabase(c *cli.Context) (*papervault.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := papervault.NewDatabase(c.String("db"), papervault.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one PDF file is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithExtractionBudget(c.Duration("extraction-budget")))
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	for _, path := range c.Args().Slice() {
		pdfBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		doc, err := pipeline.Process(ctx, path, pdfBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: FAILED (%v)\n", path, err)
			continue
		}

		title := "(no title)"
		if doc.Title != nil {
			title = *doc.Title
		}
		fmt.Printf("%s: indexed as %d — %q, %d pages\n", path, doc.Id, title, doc.PageCount)
	}

	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	var opts []search.QueryOption
	if docFlag := c.String("document"); docFlag != "" {
		id, err := strconv.ParseUint(docFlag, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid document ID %q: %w", docFlag, err)
		}
		opts = append(opts, search.InDocument(core.ID(id)))
	}
	if section := c.String("section"); section != "" {
		opts = append(opts, search.InSection(section))
	}

	response, err := searcher.Search(context.Background(), query, c.Int("limit"), opts...)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits in %dms\n", response.ResultCount, response.SearchTimeMs)
	for i, hit := range response.Hits {
		fmt.Printf("%d: [%0.3f] doc %d, %s (page %d, chunk %d)\n",
			i, hit.Score, hit.DocumentId, hit.Section, hit.Page, hit.Ordinal)
		fmt.Printf("   %s\n", snippet(hit.Text, 160))
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	db, err := papervault.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if c.NArg() > 0 {
		id, err := strconv.ParseUint(c.Args().First(), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid document ID %q: %w", c.Args().First(), err)
		}
		doc, err := db.DocumentRepository().GetDocument(ctx, core.ID(id))
		if err != nil {
			return err
		}
		printDocument(ctx, db, doc)
		return nil
	}

	documents, err := db.DocumentRepository().ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		fmt.Println("No documents stored")
		return nil
	}
	for _, doc := range documents {
		title := doc.Filename
		if doc.Title != nil {
			title = *doc.Title
		}
		fmt.Printf("%d  %-10s  %s\n", doc.Id, doc.Status, title)
	}
	return nil
}

func printDocument(ctx context.Context, db *papervault.Database, doc *core.Document) {
	fmt.Printf("Document %d (%s)\n", doc.Id, doc.Filename)
	fmt.Printf("  Status:     %s\n", doc.Status)
	if doc.Title != nil {
		fmt.Printf("  Title:      %s\n", *doc.Title)
	}
	if len(doc.Authors) > 0 {
		fmt.Printf("  Authors:    %s\n", strings.Join(doc.Authors, "; "))
	}
	if doc.DOI != nil {
		fmt.Printf("  DOI:        %s\n", *doc.DOI)
	}
	fmt.Printf("  Pages:      %d\n", doc.PageCount)
	fmt.Printf("  Tables:     %d\n", len(doc.Tables))
	fmt.Printf("  Figures:    %d\n", len(doc.Figures))
	fmt.Printf("  References: %d\n", len(doc.References))
	fmt.Printf("  Stages:     text=%s tables=%s figures=%s references=%s\n",
		doc.Stages.Text, doc.Stages.Tables, doc.Stages.Figures, doc.Stages.References)
	fmt.Printf("  Uploaded:   %s\n", doc.UploadedAt.Format(time.RFC3339))
	if !doc.IndexedAt.IsZero() {
		fmt.Printf("  Indexed:    %s\n", doc.IndexedAt.Format(time.RFC3339))
	}

	chunks, err := db.ChunkRepository().GetChunks(ctx, doc.Id)
	if err == nil {
		fmt.Printf("  Chunks:     %d\n", len(chunks))
	}
}

func reembedCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder, err := db.NewReembedder(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
