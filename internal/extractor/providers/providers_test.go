package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/extractor/cache"
	"voxform/internal/extractor/providers"
)

func TestRegisterBuiltins_AllIdentifiers(t *testing.T) {
	providers.RegisterBuiltins()
	providers.RegisterBuiltins()

	registered := extractor.Registered()
	for _, id := range []string{
		"demo", "regex", "pattern", "openai", "cloud", "ollama", "local",
		"openai_audio", "multimodal", "vllm", "whisper", "cache",
	} {
		assert.Contains(t, registered, id)
	}
}

func TestBuildExtractors_DefaultChains(t *testing.T) {
	providers.RegisterBuiltins()
	cfg, err := config.Load()
	require.NoError(t, err)

	text, err := extractor.BuildExtractors(cfg.Providers.Priority, cfg, extractor.Deps{})
	require.NoError(t, err)
	audio, err := extractor.BuildExtractors(cfg.Providers.AudioPriority, cfg, extractor.Deps{})
	require.NoError(t, err)

	names := func(chain *extractor.Chain) []string { return chain.Names() }
	assert.Equal(t, []string{"demo", "ollama", "openai"}, names(extractor.NewChain(domain.InputText, text)))
	assert.Equal(t, []string{"openai_audio", "whisper", "vllm"}, names(extractor.NewChain(domain.InputAudio, audio)))
}

func TestCacheFactory_ReusesSharedInstance(t *testing.T) {
	providers.RegisterBuiltins()
	shared, err := cache.New(&config.CacheConfig{})
	require.NoError(t, err)

	got, err := extractor.NewExtractor("cache", &config.Config{}, extractor.Deps{Learned: shared})

	require.NoError(t, err)
	assert.Same(t, shared, got)
}
