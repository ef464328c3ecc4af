// Package providers registers every built-in extractor with the extractor registry.
package providers

import (
	"sync"

	"voxform/internal/config"
	"voxform/internal/extractor"
	"voxform/internal/extractor/cache"
	"voxform/internal/extractor/multimodal"
	"voxform/internal/extractor/ollama"
	"voxform/internal/extractor/openai"
	"voxform/internal/extractor/pattern"
	"voxform/internal/port"
)

var once sync.Once

// RegisterBuiltins registers all built-in providers and their aliases. Safe to call repeatedly.
func RegisterBuiltins() {
	once.Do(func() {
		extractor.RegisterProvider(newPattern, pattern.Name, "regex", "pattern")
		extractor.RegisterProvider(newOpenAI, openai.Name, "cloud")
		extractor.RegisterProvider(newOllama, ollama.Name, "local")
		extractor.RegisterProvider(newOpenAIAudio, multimodal.OpenAIAudioName, "multimodal")
		extractor.RegisterProvider(newVLLM, multimodal.VLLMName)
		extractor.RegisterProvider(newWhisper, multimodal.WhisperName)
		extractor.RegisterProvider(newCache, cache.Name)
	})
}

func newPattern(*config.Config, extractor.Deps) (port.FieldExtractor, error) {
	return pattern.New(), nil
}

func newOpenAI(cfg *config.Config, _ extractor.Deps) (port.FieldExtractor, error) {
	return openai.New(&cfg.OpenAI), nil
}

func newOllama(cfg *config.Config, _ extractor.Deps) (port.FieldExtractor, error) {
	e, err := ollama.New(&cfg.Ollama)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func newOpenAIAudio(cfg *config.Config, _ extractor.Deps) (port.FieldExtractor, error) {
	return multimodal.NewOpenAIAudio(&cfg.OpenAI), nil
}

func newVLLM(cfg *config.Config, _ extractor.Deps) (port.FieldExtractor, error) {
	return multimodal.NewVLLM(&cfg.VLLM), nil
}

// newWhisper pairs the transcription server with the local LLM, falling back to patterns.
func newWhisper(cfg *config.Config, _ extractor.Deps) (port.FieldExtractor, error) {
	var text port.FieldExtractor
	if local, err := ollama.New(&cfg.Ollama); err == nil {
		text = local
	}
	return multimodal.NewWhisperExtractor(&cfg.Whisper, multimodal.NewWhisperClient(&cfg.Whisper), text, pattern.New()), nil
}

// newCache reuses the shared cache so learning and replay see the same templates.
func newCache(cfg *config.Config, deps extractor.Deps) (port.FieldExtractor, error) {
	if deps.Learned != nil {
		return deps.Learned, nil
	}
	c, err := cache.New(&cfg.Cache)
	if err != nil {
		return nil, err
	}
	return c, nil
}
