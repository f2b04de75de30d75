package utils

import (
	"path/filepath"
	"strings"
)

// ContentTypeForFilename maps an import-file extension to the content
// type used when archiving the upload.
func ContentTypeForFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".xlsx", ".xlsm":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
