package locgene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// GeneDBCache lazily opens the per-assembly gene databases found in a
// directory, keyed by file basename (e.g. "grch38" for grch38.db).
type GeneDBCache struct {
	cacheMap map[string]GeneDB
	dir      string
	mu       sync.Mutex
}

func NewGeneDBCache(dir string) (*GeneDBCache, error) {
	cacheMap := make(map[string]GeneDB)

	files, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("opening gene database dir %s: %w", dir, err)
	}

	log.Debug().Msgf("caching gene databases in %s...", dir)

	for _, file := range files {
		basename := file.Name()

		if strings.HasSuffix(basename, ".db") {
			name := strings.TrimSuffix(basename, filepath.Ext(basename))

			db, err := NewSqliteGeneDB(name, filepath.Join(dir, basename))

			if err != nil {
				return nil, err
			}

			cacheMap[name] = db

			log.Debug().Msgf("found gene database %s", name)
		}
	}

	return &GeneDBCache{dir: dir, cacheMap: cacheMap}, nil
}

func (cache *GeneDBCache) Dir() string {
	return cache.dir
}

func (cache *GeneDBCache) List() ([]*GeneDBInfo, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	ids := make([]string, 0, len(cache.cacheMap))

	for id := range cache.cacheMap {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	infos := make([]*GeneDBInfo, 0, len(ids))

	for _, id := range ids {
		info, err := cache.cacheMap[id].GeneDBInfo()

		if err != nil {
			return nil, err
		}

		infos = append(infos, info)
	}

	return infos, nil
}

func (cache *GeneDBCache) GeneDB(assembly string) (GeneDB, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	db, ok := cache.cacheMap[assembly]

	if !ok {
		file := filepath.Join(cache.dir, fmt.Sprintf("%s.db", assembly))

		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("no gene database for assembly %s in %s", assembly, cache.dir)
		}

		db, err := NewSqliteGeneDB(assembly, file)

		if err != nil {
			return nil, err
		}

		cache.cacheMap[assembly] = db

		return db, nil
	}

	return db, nil
}

func (cache *GeneDBCache) Close() {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	for _, db := range cache.cacheMap {
		db.Close()
	}
}
