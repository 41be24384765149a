package sources

import "github.com/JonMunkholm/bronze/internal/bronze"

// CRM is the source label for files exported from the CRM.
const CRM = "crm"

func crmEntries() []bronze.Entry {
	return []bronze.Entry{
		{Source: CRM, Path: "source_crm/cust_info.csv", Table: "crm_cust_info_raw"},
		{Source: CRM, Path: "source_crm/prd_info.csv", Table: "crm_prd_info_raw"},
		{Source: CRM, Path: "source_crm/sales_details.csv", Table: "crm_sales_details_raw"},
	}
}
