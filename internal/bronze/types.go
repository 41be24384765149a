package bronze

import "path"

// MappingRecord maps one raw source file to its destination raw table.
type MappingRecord struct {
	Source string `json:"source"` // Originating system: "crm", "erp"
	Path   string `json:"path"`   // Fully-qualified file location
	Table  string `json:"table"`  // Destination raw table: "crm_cust_info_raw"
}

// FileName returns the last element of the record's path.
func (m MappingRecord) FileName() string {
	return path.Base(m.Path)
}

// Entry declares a mapping relative to a registry's base path.
type Entry struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"` // Relative to the base path: "source_crm/cust_info.csv"
	Table  string `yaml:"table"`
}

// SourceGroup lists the tables fed by one source system.
type SourceGroup struct {
	Name   string   `json:"name"`
	Tables []string `json:"tables"`
}
