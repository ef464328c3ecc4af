// Package cache learns text templates from successful extractions and
// replays them as a chain provider. A template is the normalized utterance
// with every extracted value replaced by a {field} placeholder.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"voxform/internal/config"
	"voxform/internal/domain"
	"voxform/internal/extractor"
	"voxform/internal/logger"
	"voxform/internal/port"
)

// Name is the registry identifier of the pattern cache.
const Name = "cache"

const (
	defaultMaxPatterns = 1000
	defaultSimilarity  = 0.6
	minValueLen        = 3
)

var (
	spaceRe       = regexp.MustCompile(`\s+`)
	placeholderRe = regexp.MustCompile(`\{(name|email|phone|address)\}`)
)

// Pattern is one learned template.
type Pattern struct {
	Key          string    `yaml:"key"`
	Template     string    `yaml:"template"`
	Provider     string    `yaml:"provider"`
	SuccessCount int       `yaml:"success_count"`
	HitCount     int       `yaml:"hit_count"`
	CreatedAt    time.Time `yaml:"created_at"`
	LastUsed     time.Time `yaml:"last_used"`

	re     *regexp.Regexp
	groups []domain.FieldName
	words  map[string]struct{}
}

type snapshot struct {
	UpdatedAt time.Time  `yaml:"updated_at"`
	Patterns  []*Pattern `yaml:"patterns"`
}

// Cache is safe for concurrent use.
type Cache struct {
	mu          sync.RWMutex
	saveMu      sync.Mutex
	patterns    map[string]*Pattern
	maxPatterns int
	similarity  float64
	file        string
	hits        int
	misses      int
}

// New creates a cache and loads the snapshot at cfg.File if one exists.
func New(cfg *config.CacheConfig) (*Cache, error) {
	c := &Cache{
		patterns:    make(map[string]*Pattern),
		maxPatterns: cfg.MaxPatterns,
		similarity:  cfg.Similarity,
		file:        cfg.File,
	}
	if c.maxPatterns <= 0 {
		c.maxPatterns = defaultMaxPatterns
	}
	if c.similarity <= 0 {
		c.similarity = defaultSimilarity
	}
	if c.file != "" {
		if err := c.load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Cache) Name() string { return Name }

func (c *Cache) Supports(kind domain.InputKind) bool { return kind == domain.InputText }

// Available is false until at least one template has been learned.
func (c *Cache) Available(context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.patterns) == 0 {
		return extractor.Unavailable("no learned patterns")
	}
	return nil
}

// Extract replays the most similar learned template against the input.
// A miss is reported as ErrNoMatch.
func (c *Cache) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if input.Kind != domain.InputText {
		return nil, fmt.Errorf("%w: %s", extractor.ErrUnsupportedInput, input.Kind)
	}
	text := normalize(input.Text)
	words := wordSet(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	type candidate struct {
		p     *Pattern
		score float64
	}
	var candidates []candidate
	for _, p := range c.patterns {
		if s := jaccard(words, p.words); s >= c.similarity {
			candidates = append(candidates, candidate{p, s})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].p.Key < candidates[j].p.Key
	})

	for _, cand := range candidates {
		m := cand.p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		fields := domain.ExtractedFields{}
		for i, f := range cand.p.groups {
			if !fields.Has(f) {
				fields.Set(f, m[i+1])
			}
		}
		if fields.Len() == 0 {
			continue
		}
		cand.p.HitCount++
		cand.p.LastUsed = time.Now().UTC()
		c.hits++
		logger.Debug(ctx, "cache.Extract: hit", "key", cand.p.Key, "score", cand.score, "fields", fields.Keys())
		return &port.ExtractOutput{Fields: fields, ModelUsed: "pattern-cache"}, nil
	}
	c.misses++
	return nil, extractor.ErrNoMatch
}

// Learn records a template for text. Values that do not appear verbatim in the
// text are left out; a text with no placeholders at all is not learned.
func (c *Cache) Learn(ctx context.Context, text string, fields domain.ExtractedFields, provider string) {
	if fields.Len() == 0 || provider == Name {
		return
	}
	norm := normalize(text)
	template := buildTemplate(norm, fields)
	if !placeholderRe.MatchString(template) {
		return
	}
	key := patternKey(norm)
	now := time.Now().UTC()

	c.mu.Lock()
	if p, ok := c.patterns[key]; ok {
		p.SuccessCount++
		p.LastUsed = now
	} else {
		p := &Pattern{
			Key:          key,
			Template:     template,
			Provider:     provider,
			SuccessCount: 1,
			CreatedAt:    now,
			LastUsed:     now,
		}
		if err := p.compile(); err != nil {
			c.mu.Unlock()
			logger.Warn(ctx, "cache.Learn: template did not compile", "key", key, "error", err)
			return
		}
		c.patterns[key] = p
		c.prune()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err := c.save(snap); err != nil {
		logger.Warn(ctx, "cache.Learn: saving snapshot failed", "file", c.file, "error", err)
	}
}

// Stats summarises the cache for the status endpoint.
func (c *Cache) Stats() domain.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.CacheStats{Patterns: len(c.patterns), Hits: c.hits, Misses: c.misses}
}

// Clear drops every learned template.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.patterns = make(map[string]*Pattern)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	return c.save(snap)
}

// prune evicts the least used templates once the cache is over capacity.
func (c *Cache) prune() {
	if len(c.patterns) <= c.maxPatterns {
		return
	}
	all := make([]*Pattern, 0, len(c.patterns))
	for _, p := range c.patterns {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		ui, uj := all[i].SuccessCount+all[i].HitCount, all[j].SuccessCount+all[j].HitCount
		if ui != uj {
			return ui < uj
		}
		return all[i].LastUsed.Before(all[j].LastUsed)
	})
	for _, p := range all[:len(all)-c.maxPatterns] {
		delete(c.patterns, p.Key)
	}
}

func (c *Cache) snapshotLocked() *snapshot {
	snap := &snapshot{UpdatedAt: time.Now().UTC(), Patterns: make([]*Pattern, 0, len(c.patterns))}
	for _, p := range c.patterns {
		cp := *p
		snap.Patterns = append(snap.Patterns, &cp)
	}
	sort.Slice(snap.Patterns, func(i, j int) bool { return snap.Patterns[i].Key < snap.Patterns[j].Key })
	return snap
}

func (c *Cache) save(snap *snapshot) error {
	if c.file == "" {
		return nil
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling cache snapshot: %w", err)
	}
	tmp := c.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing cache snapshot: %w", err)
	}
	return os.Rename(tmp, c.file)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(filepath.Clean(c.file))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cache snapshot: %w", err)
	}
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing cache snapshot %s: %w", c.file, err)
	}
	for _, p := range snap.Patterns {
		if p == nil || p.Key == "" {
			continue
		}
		if err := p.compile(); err != nil {
			continue
		}
		c.patterns[p.Key] = p
	}
	c.prune()
	return nil
}

// compile turns the template into an anchored regex with one lazy group per placeholder.
func (p *Pattern) compile() error {
	var b strings.Builder
	b.WriteString("^")
	p.groups = p.groups[:0]
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(p.Template, -1) {
		b.WriteString(regexp.QuoteMeta(p.Template[last:loc[0]]))
		b.WriteString("(.+?)")
		p.groups = append(p.groups, domain.FieldName(p.Template[loc[2]:loc[3]]))
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(p.Template[last:]))
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return err
	}
	p.re = re
	p.words = wordSet(placeholderRe.ReplaceAllString(p.Template, " "))
	return nil
}

func buildTemplate(norm string, fields domain.ExtractedFields) string {
	template := norm
	for _, f := range fields.Keys() {
		v := normalize(fields.Get(f))
		if len(v) < minValueLen {
			continue
		}
		template = strings.ReplaceAll(template, v, "{"+string(f)+"}")
	}
	return template
}

func normalize(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.ToLower(s), " "))
}

func patternKey(norm string) string {
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])[:12]
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
