// Package stressors holds the catalog of stress payloads the
// supervision engine can run. Payloads are small, mostly linear loops;
// everything interesting about their lifecycle lives in
// internal/supervise.
package stressors

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/stressforge/stresser/internal/supervise"
)

var registry = xsync.NewMapOf[string, supervise.WorkerFunc]()

// Register adds a payload under name. Registering the same name twice
// is a programmer error.
func Register(name string, fn supervise.WorkerFunc) {
	if _, loaded := registry.LoadOrStore(name, fn); loaded {
		panic(fmt.Sprintf("stressor %q registered twice", name))
	}
}

// Lookup resolves a payload by name.
func Lookup(name string) (supervise.WorkerFunc, bool) {
	return registry.Load(name)
}

// Names lists registered stressors in stable order.
func Names() []string {
	var names []string
	registry.Range(func(name string, _ supervise.WorkerFunc) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// argValue extracts a key=value argument, falling back to def.
func argValue(args []string, key, def string) string {
	prefix := key + "="
	for _, a := range args {
		if len(a) > len(prefix) && a[:len(prefix)] == prefix {
			return a[len(prefix):]
		}
	}
	return def
}

func argInt(args []string, key string, def int64) int64 {
	v := argValue(args, key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func argDuration(args []string, key string, def time.Duration) time.Duration {
	v := argValue(args, key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
