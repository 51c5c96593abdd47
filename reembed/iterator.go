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

package reembed

import (
	"context"

	"github.com/papervault/papervault/core"
	"github.com/papervault/papervault/storage"
)

// DocumentIterator walks every indexed document in the store.
type DocumentIterator struct {
	repo storage.DocumentRepository
}

// NewDocumentIterator creates a new document iterator.
func NewDocumentIterator(repo storage.DocumentRepository) *DocumentIterator {
	return &DocumentIterator{repo: repo}
}

// ForEach calls fn for every document with status indexed, in ID order.
// Iteration stops on the first error from fn. Context cancellation is
// checked between documents.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func(*core.Document) error) error {
	documents, err := it.repo.ListDocuments(ctx)
	if err != nil {
		return err
	}

	for _, doc := range documents {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if doc == nil || doc.Status != core.StatusIndexed {
			continue
		}
		if err := fn(doc); err != nil {
			return err
		}
	}

	return nil
}
