package database

import (
	"fmt"
	"sort"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DriverSQLite is the name of the bundled SQLite driver.
const DriverSQLite = "sqlite"

// DriverFunc builds a dialector from a DSN.
type DriverFunc func(dsn string) gorm.Dialector

var drivers = struct {
	sync.RWMutex
	m map[string]DriverFunc
}{m: map[string]DriverFunc{
	DriverSQLite: sqlite.Open,
}}

// RegisterDriver makes a dialector available under name, replacing any
// earlier registration.
func RegisterDriver(name string, fn DriverFunc) {
	drivers.Lock()
	defer drivers.Unlock()
	drivers.m[name] = fn
}

// Drivers returns the registered driver names in sorted order.
func Drivers() []string {
	drivers.RLock()
	defer drivers.RUnlock()
	names := make([]string, 0, len(drivers.m))
	for name := range drivers.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupDriver(name string) (DriverFunc, error) {
	drivers.RLock()
	fn, ok := drivers.m[name]
	drivers.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown database driver %q (registered: %v)", name, Drivers())
	}
	return fn, nil
}
