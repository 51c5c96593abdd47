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

package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/papervault/papervault/ai"
	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/storage"
)

// Hit is one ranked chunk in a search response.
type Hit struct {
	DocumentId   core.ID
	Ordinal      int
	Section      string
	Page         int
	Type         core.ChunkType
	Text         string
	Score        float32
	MatchedTerms []string
}

// Response is the result of one search: the ranked hits plus query metadata.
// Hits are ordered by score descending, then ordinal ascending.
type Response struct {
	Query        string
	ResultCount  int
	TopScore     float32
	SearchTimeMs int64
	Hits         []Hit
}

// Searcher provides semantic search over indexed document chunks.
type Searcher struct {
	chunkRepository    storage.ChunkRepository
	queryLogRepository storage.QueryLogRepository
	embedder           ai.Embedder
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// QueryOption narrows a single search.
type QueryOption func(*storage.Filter)

// InDocument restricts the search to chunks of one document.
func InDocument(id core.ID) QueryOption {
	return func(f *storage.Filter) {
		f.DocumentId = &id
	}
}

// InSection restricts the search to chunks from one section.
func InSection(section string) QueryOption {
	return func(f *storage.Filter) {
		f.Section = &section
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	chunkRepository storage.ChunkRepository,
	queryLogRepository storage.QueryLogRepository,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if queryLogRepository == nil {
		return nil, ErrQueryLogRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		chunkRepository:    chunkRepository,
		queryLogRepository: queryLogRepository,
		embedder:           provider.Embedder(),
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "search")

	return s, nil
}

// Search embeds the query and returns up to limit chunks ranked by cosine
// similarity. An empty query string is embedded like any other; an unknown
// document filter yields an empty response, not an error. Every search is
// appended to the query log (best effort).
func (s *Searcher) Search(ctx context.Context, query string, limit int, opts ...QueryOption) (*Response, error) {
	return s.SearchWithMonitor(ctx, query, limit, nil, opts...)
}

// SearchWithMonitor is Search with observation hooks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, limit int, monitor Monitor, opts ...QueryOption) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)
	start := time.Now()

	var filter storage.Filter
	for _, opt := range opts {
		opt(&filter)
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(len(vector))

	matches, err := s.chunkRepository.Search(ctx, vector, limit, filter)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(len(matches))

	response := &Response{
		Query:       query,
		ResultCount: len(matches),
		Hits:        make([]Hit, 0, len(matches)),
	}
	for _, match := range matches {
		if match == nil || match.Chunk == nil {
			continue
		}
		response.Hits = append(response.Hits, Hit{
			DocumentId:   match.Chunk.DocumentId,
			Ordinal:      match.Chunk.Ordinal,
			Section:      match.Chunk.Section,
			Page:         match.Chunk.Page,
			Type:         match.Chunk.Type,
			Text:         match.Chunk.Text,
			Score:        match.Score,
			MatchedTerms: matchedQueryTerms(match.Chunk.Text, query),
		})
	}
	if len(response.Hits) > 0 {
		response.TopScore = response.Hits[0].Score
	}
	response.SearchTimeMs = time.Since(start).Milliseconds()

	s.logQuery(ctx, query, vector, response)
	monitor.Finish(response)

	return response, nil
}

// logQuery appends the search to the audit log. Failures are logged and
// swallowed; auditing never fails a search.
func (s *Searcher) logQuery(ctx context.Context, query string, vector []float32, response *Response) {
	record := &core.SearchQuery{
		Text:        query,
		Vector:      vector,
		ResultCount: response.ResultCount,
		TopScore:    response.TopScore,
	}
	if _, err := s.queryLogRepository.AppendQuery(ctx, record); err != nil {
		s.logger.Warn("failed to append query log record", "query", query, "err", err)
	}
}
