package slidegen

import "os"

// cleaner tracks the intermediate files of one generation run and deletes
// them best-effort. Failures are logged and never escalated: a leftover temp
// file is acceptable, a failed report is not.
type cleaner struct {
	logger *Logger
	keep   bool
	paths  map[string]bool
}

func newCleaner(logger *Logger, keep bool) *cleaner {
	return &cleaner{
		logger: logger,
		keep:   keep,
		paths:  make(map[string]bool),
	}
}

// track registers an intermediate file for eventual deletion.
func (c *cleaner) track(path string) {
	c.paths[path] = true
}

// remove deletes one tracked file now.
func (c *cleaner) remove(path string) {
	delete(c.paths, path)
	if c.keep {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("could not remove intermediate file %s: %v", path, err)
	}
}

// flush deletes every file still tracked. Called once the run is over, on
// success and failure alike.
func (c *cleaner) flush() {
	for path := range c.paths {
		c.remove(path)
	}
}
