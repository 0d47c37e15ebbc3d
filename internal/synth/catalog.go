package synth

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/muesli/gitcha"
	"golang.org/x/text/language"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

const modelExt = ".onnx"

// Model is a piper voice model found on disk.
type Model struct {
	Voice speech.Voice
	Path  string
	Size  int64

	// SampleRate is the rate of the model's raw output, 0 when unknown.
	SampleRate int
}

// modelConfig is the subset of a piper .onnx.json we read.
type modelConfig struct {
	Dataset  string `json:"dataset"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
}

// Catalog discovers piper voice models under a set of directories.
type Catalog struct {
	dirs []string

	mu     sync.RWMutex
	models []Model
}

// NewCatalog creates a catalog over dirs. Call Scan to populate it.
func NewCatalog(dirs ...string) *Catalog {
	return &Catalog{dirs: dirs}
}

// Scan replaces the catalog with the models currently on disk. Missing
// directories are skipped.
func (c *Catalog) Scan() error {
	var models []Model
	seen := make(map[string]bool)

	for _, dir := range c.dirs {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			log.Debug("Voice directory missing", "dir", dir)
			continue
		}

		ch, err := gitcha.FindAllFilesExcept(dir, []string{"*" + modelExt}, nil)
		if err != nil {
			return err
		}
		for res := range ch {
			if seen[res.Path] {
				continue
			}
			seen[res.Path] = true
			models = append(models, loadModel(res.Path, res.Info.Size()))
		}
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].Voice.Name < models[j].Voice.Name
	})

	c.mu.Lock()
	c.models = models
	c.mu.Unlock()
	log.Debug("Voice models scanned", "models", len(models))
	return nil
}

// Voices returns the voice of every model, sorted by name.
func (c *Catalog) Voices() []speech.Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()

	voices := make([]speech.Voice, len(c.models))
	for i, m := range c.models {
		voices[i] = m.Voice
	}
	return voices
}

// Models returns the scanned models.
func (c *Catalog) Models() []Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Model(nil), c.models...)
}

// sampleRate returns the output rate of the model at path, 0 when unknown.
func (c *Catalog) sampleRate(path string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.models {
		if m.Path == path {
			return m.SampleRate
		}
	}
	return 0
}

// Watch rescans when models are added, removed or rewritten and emits
// speech.VoicesChanged. Bursts of file events are coalesced. It returns
// once ctx is done.
func (c *Catalog) Watch(ctx context.Context, emitter speech.Emitter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close() //nolint:errcheck

	for _, dir := range c.dirs {
		if err := watcher.Add(dir); err != nil {
			log.Debug("Cannot watch voice directory", "dir", dir, "error", err)
			continue
		}
		log.Debug("Watching voice directory", "dir", dir)
	}

	const settle = 250 * time.Millisecond
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isModelFile(event.Name) || event.Has(fsnotify.Chmod) {
				continue
			}
			log.Debug("Voice directory changed", "file", event.Name, "event", event.Op)
			timer.Reset(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("Voice watcher error", "error", err)
		case <-timer.C:
			if err := c.Scan(); err != nil {
				log.Error("Voice rescan failed", "error", err)
				continue
			}
			emitter.Emit(speech.VoicesChanged{})
		}
	}
}

func isModelFile(name string) bool {
	return strings.HasSuffix(name, modelExt) || strings.HasSuffix(name, modelExt+".json")
}

func loadModel(path string, size int64) Model {
	name := strings.TrimSuffix(filepath.Base(path), modelExt)
	code := strings.SplitN(name, "-", 2)[0]
	var sampleRate int

	if data, err := os.ReadFile(path + ".json"); err == nil {
		var cfg modelConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			log.Debug("Unreadable model config", "path", path+".json", "error", err)
		} else {
			if cfg.Language.Code != "" {
				code = cfg.Language.Code
			}
			sampleRate = cfg.Audio.SampleRate
		}
	}

	return Model{
		Voice: speech.Voice{
			ID:       path,
			Name:     name,
			Language: normalizeLanguage(code),
		},
		Path:       path,
		Size:       size,
		SampleRate: sampleRate,
	}
}

// normalizeLanguage turns codes like "en_US" into BCP 47 tags like "en-US".
// Codes that do not parse are returned unchanged.
func normalizeLanguage(code string) string {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return code
	}
	return tag.String()
}
