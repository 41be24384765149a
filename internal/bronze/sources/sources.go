// Package sources holds the built-in Bronze catalog.
// Each source system declares its files in its own file.
package sources

import "github.com/JonMunkholm/bronze/internal/bronze"

// DefaultBasePath is the root folder where the Bronze raw files live.
const DefaultBasePath = "/Volumes/workspace/bronze/raw_files"

// Manifest returns the built-in catalog rooted at DefaultBasePath.
// CRM entries come first, then ERP.
func Manifest() *bronze.Manifest {
	var entries []bronze.Entry
	entries = append(entries, crmEntries()...)
	entries = append(entries, erpEntries()...)

	return &bronze.Manifest{
		BasePath: DefaultBasePath,
		Mappings: entries,
	}
}

// Default returns the registry built from the built-in catalog.
func Default() *bronze.Registry {
	m := Manifest()
	return bronze.MustNew(m.BasePath, m.Mappings)
}
