package help

import (
	"path/filepath"
	"time"

	"github.com/mkovalev/go-layer-cache/config"
)

func Cfg(dir string) *config.Cache {
	c := &config.Cache{
		Memory: config.MemoryCfg{
			CapacityBytes:   1024 * 1024,
			TTL:             time.Minute * 5,
			MaxItemFraction: 0.1,
		},
		Disk: &config.DiskCfg{
			Path:         filepath.Join(dir, "cache.db"),
			TTL:          time.Hour * 24,
			SweepsPerSec: 100,
		},
		Results: &config.ResultsCfg{
			TTL:        time.Hour,
			MaxEntries: 1000,
		},
	}
	c.AdjustConfig()
	return c
}

func MemoryOnlyCfg() *config.Cache {
	c := &config.Cache{
		Memory: config.MemoryCfg{
			CapacityBytes:   1024 * 1024,
			TTL:             time.Minute * 5,
			MaxItemFraction: 0.1,
		},
	}
	c.AdjustConfig()
	return c
}

// BrokenDiskCfg points the store at a directory that does not exist, so
// opening the persistent tier fails.
func BrokenDiskCfg(dir string) *config.Cache {
	c := Cfg(dir)
	c.Disk.Path = filepath.Join(dir, "does-not-exist", "cache.db")
	c.AdjustConfig()
	return c
}

func SmallCapCfg(dir string, maxResults int) *config.Cache {
	c := Cfg(dir)
	c.Results.MaxEntries = maxResults
	c.AdjustConfig()
	return c
}
