package sources

import "github.com/JonMunkholm/bronze/internal/bronze"

// ERP is the source label for files exported from the ERP.
const ERP = "erp"

// erpEntries keeps the ERP's internal codes (AZ12, A101, G1V2) in table
// names so raw tables stay traceable to their source extract.
func erpEntries() []bronze.Entry {
	return []bronze.Entry{
		{Source: ERP, Path: "source_erp/CUST_AZ12.csv", Table: "erp_cust_az12_raw"},
		{Source: ERP, Path: "source_erp/LOC_A101.csv", Table: "erp_loc_a101_raw"},
		{Source: ERP, Path: "source_erp/PX_CAT_G1V2.csv", Table: "erp_px_cat_g1v2_raw"},
	}
}
