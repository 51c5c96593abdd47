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

// Package papervault stores PDF research papers as structured, semantically
// searchable documents: extraction, chunking, embedding and filtered vector
// search over a single BadgerDB store.
package papervault

import (
	"io"
	"log/slog"

	"github.com/papervault/papervault/ai"
	"github.com/papervault/papervault/ai/openai"
	"github.com/papervault/papervault/ingestion"
	"github.com/papervault/papervault/reembed"
	"github.com/papervault/papervault/search"
	"github.com/papervault/papervault/storage"
	"github.com/papervault/papervault/storage/badger"
)

// Database bundles the storage backend, repositories and AI provider behind
// one handle. It is the root object the CLI and embedding applications work
// with.
type Database struct {
	backend      *badger.Backend
	documentRepo storage.DocumentRepository
	chunkRepo    storage.ChunkRepository
	queryLogRepo storage.QueryLogRepository
	provider     ai.Provider
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider sets a pre-built AI provider, bypassing the OpenAI-compatible
// default. Mainly for tests and embedding applications with their own wiring.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// NewDatabase opens (or creates) a database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	queryLogRepo, err := badger.NewQueryLogRepository(backend)
	if err != nil {
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			queryLogRepo.Close()
			chunkRepo.Close()
			documentRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:      backend,
		documentRepo: documentRepo,
		chunkRepo:    chunkRepo,
		queryLogRepo: queryLogRepo,
		provider:     provider,
		logger:       slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.queryLogRepo.Close(); err != nil {
		db.logger.Error("error closing query log repository", "err", err)
		return err
	}
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.documentRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documentRepo
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) QueryLogRepository() storage.QueryLogRepository {
	return db.queryLogRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.documentRepo, db.chunkRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.chunkRepo, db.queryLogRepo, db.provider, opts...)
}

// NewReembedder builds a reembedder that rewrites every indexed chunk's
// vector with the currently configured embedding model.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.documentRepo, db.chunkRepo, db.provider.Embedder(), config, progress)
}
