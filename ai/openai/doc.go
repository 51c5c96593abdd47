// Package openai implements the ai interfaces against any OpenAI-compatible
// embeddings endpoint (OpenAI itself, Ollama, LocalAI, vLLM, ...).
package openai
