// Package bronze provides the ingestion registry for the Bronze layer.
//
// The registry answers two questions for an ingestion job: where do the raw
// files live, and which raw table receives each of them. It holds no I/O and
// performs no ingestion itself. Jobs that read files and write rows take a
// *Registry as a dependency and iterate [Registry.Mappings].
//
// # Building a Registry
//
// A registry is built once from a base path and an ordered list of entries.
// Each entry names its source system, a path relative to the base, and the
// destination table:
//
//	reg, err := bronze.New("/Volumes/workspace/bronze/raw_files", []bronze.Entry{
//	    {Source: "crm", Path: "source_crm/cust_info.csv", Table: "crm_cust_info_raw"},
//	    {Source: "erp", Path: "source_erp/LOC_A101.csv", Table: "erp_loc_a101_raw"},
//	})
//
// Construction validates every entry and reports all problems at once as
// [ValidationErrors]. Table names must be unique and paths must stay under
// the base path.
//
// Entries can also come from a YAML manifest via [ReadManifest]; the built-in
// catalog lives in the sources subpackage.
//
// # Immutability
//
// A Registry never changes after construction. Every accessor returns a copy,
// so any number of goroutines may read it without locking.
package bronze
