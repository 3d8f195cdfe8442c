package bare

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru"
	"github.com/yaoapp/kun/log"
)

// scripts the loaded scripts, script id -> *Script. The watcher reloads
// entries from its own goroutine while runtimes read them.
var scripts sync.Map

// caches transformed sources, keyed by content hash
var caches *Cache

// transformed a cached transform outcome
type transformed struct {
	code      []byte
	sourceMap []byte
}

// NewCache create a new transform cache
func NewCache(size int) (*Cache, error) {
	arc, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: arc}, nil
}

// Len the number of cached entries
func (cache *Cache) Len() int {
	return cache.lru.Len()
}

// NewScript create a new script
func NewScript(file string, id string) *Script {
	return &Script{ID: id, File: file}
}

// LoadScript load a script from disk and register it. TypeScript sources are
// transformed, the emitted source map is kept for stack remapping.
func LoadScript(file string, id string) (*Script, error) {
	script := NewScript(file, id)
	source, err := os.ReadFile(file)
	if err != nil {
		return nil, runtimeError("failed to read script file: %s", err.Error())
	}

	if strings.HasSuffix(file, ".ts") {
		code, sm, terr := TransformTS(source)
		if terr != nil {
			return nil, terr
		}
		script.Source = string(code)
		script.SourceMap = sm
	} else {
		script.Source = string(source)
	}

	scripts.Store(id, script)
	return script, nil
}

// SelectScript a registered script
func SelectScript(id string) (*Script, error) {
	value, has := scripts.Load(id)
	if !has {
		return nil, runtimeError("script %s not exists", id)
	}
	return value.(*Script), nil
}

// TransformTS transform typescript source, returning the code and its source
// map. Outcomes are cached by content hash so repeated runs of the same
// fixture skip the transform.
func TransformTS(source []byte) ([]byte, []byte, error) {

	key := fmt.Sprintf("%x", sha1.Sum(source))
	if caches != nil {
		if value, has := caches.lru.Get(key); has {
			cached := value.(*transformed)
			return cached.code, cached.sourceMap, nil
		}
	}

	result := api.Transform(string(source), api.TransformOptions{
		Loader:    api.LoaderTS,
		Target:    api.ESNext,
		Sourcemap: api.SourceMapExternal,
	})

	if len(result.Errors) > 0 {
		messages := []string{}
		for _, err := range result.Errors {
			messages = append(messages, err.Text)
		}
		return nil, nil, &JSError{Type: "SyntaxError", Message: strings.Join(messages, "\n")}
	}

	if caches != nil {
		caches.lru.Add(key, &transformed{code: result.Code, sourceMap: result.Map})
	}
	return result.Code, result.Map, nil
}

// WatchScripts watch the given root for changes and reload the registered
// scripts whose files change, for development use. Blocks until the
// interrupt channel receives a value.
func WatchScripts(root string, interrupt chan uint8) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return runtimeError("failed to create the watcher: %s", err.Error())
	}
	defer watcher.Close()

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if werr := watcher.Add(path); werr != nil {
				return werr
			}
			log.Info("[Bare] [Watch] watching: %s", path)
		}
		return nil
	})
	if err != nil {
		return runtimeError("failed to watch %s: %s", root, err.Error())
	}

	for {
		select {
		case <-interrupt:
			log.Info("[Bare] [Watch] exit")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			changed, cerr := filepath.Abs(event.Name)
			if cerr != nil {
				continue
			}

			scripts.Range(func(key, value any) bool {
				id := key.(string)
				script := value.(*Script)

				abs, aerr := filepath.Abs(script.File)
				if aerr != nil || abs != changed {
					return true
				}
				if _, lerr := LoadScript(script.File, id); lerr != nil {
					log.Error("[Bare] [Watch] reload %s: %s", id, lerr.Error())
					return true
				}
				log.Info("[Bare] [Watch] reloaded: %s", id)
				return true
			})

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("[Bare] [Watch] %s", werr.Error())
		}
	}
}
