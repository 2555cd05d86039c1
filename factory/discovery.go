package factory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	apperrors "github.com/kbukum/factorygirl/errors"
	"github.com/kbukum/factorygirl/logger"
)

// discover scans the base directory, without recursing, and parses every
// factory file into a definition. The first file that fails aborts the
// scan. Entries are visited in name order, so when two files declare the
// same class the later name wins.
func (f *Factory) discover() (map[string]*Definition, error) {
	defs := make(map[string]*Definition)

	entries, err := os.ReadDir(f.cfg.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.log.Warn("Factory directory does not exist", map[string]interface{}{logger.FieldPath: f.cfg.BasePath})
			return defs, nil
		}
		return nil, apperrors.Configuration(fmt.Sprintf("read factory directory %s", f.cfg.BasePath)).WithCause(err)
	}

	pattern := filePattern(f.cfg.FactoryFileSuffix, f.cfg.Extensions)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || f.isInitScript(name) {
			continue
		}
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, apperrors.Configuration(fmt.Sprintf("invalid factory file pattern %q", pattern)).WithCause(err)
		}
		if !matched {
			continue
		}

		className := strings.TrimSuffix(strings.TrimSuffix(name, filepath.Ext(name)), f.cfg.FactoryFileSuffix)
		if className == "" {
			continue
		}

		path := filepath.Join(f.cfg.BasePath, name)
		def, err := f.loadFile(path, className)
		if err != nil {
			return nil, err
		}

		if prev, ok := defs[className]; ok {
			f.log.Warn("Factory class defined twice, last file wins", map[string]interface{}{
				logger.FieldClass: className,
				"previous":        prev.Source,
				logger.FieldPath:  path,
			})
		}
		defs[className] = def
		f.log.Debug("Factory loaded", map[string]interface{}{
			logger.FieldClass: className,
			logger.FieldTable: def.TableName,
			"aliases":         def.AliasNames(),
		})
	}
	return defs, nil
}

// loadFile resolves the table of className through its model and parses
// the file at path.
func (f *Factory) loadFile(path, className string) (*Definition, error) {
	model, err := f.models.New(className)
	if err != nil {
		return nil, err
	}
	table, err := f.mapper.TableName(model)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeMapping) {
			return nil, err
		}
		return nil, apperrors.Mapping(className, err)
	}
	return LoadDefinitionFile(path, className, table)
}

func (f *Factory) isInitScript(name string) bool {
	return name == f.cfg.InitScript || strings.HasSuffix(name, f.cfg.InitScriptSuffix)
}

// filePattern builds a glob such as "*Factory.{yaml,yml,json,toml}".
func filePattern(suffix string, extensions []string) string {
	return "*" + escapeGlob(suffix) + ".{" + strings.Join(extensions, ",") + "}"
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
