package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ISO8601Basic is the compact ISO 8601 form used in object keys.
const ISO8601Basic = "20060102T150405Z"

// BuildVariables returns the variables available to configuration
// templates: built-ins derived from the archive path and the export time,
// plus the allowed environment variables. A missing allowed variable is an
// error.
func BuildVariables(archivePath string, now time.Time, allowedEnv []string) (map[string]string, error) {
	base := filepath.Base(archivePath)
	date := now.UTC()
	variables := map[string]string{
		"ARCHIVE_NAME":        strings.TrimSuffix(base, filepath.Ext(base)),
		"EXPORT_DATE_ISO8601": date.Format(ISO8601Basic),
		"EXPORT_DATE_RFC3339": date.Format(time.RFC3339),
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}
