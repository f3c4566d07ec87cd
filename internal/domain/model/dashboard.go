package model

type DashboardSummary struct {
	TotalUsers         int64
	TotalMerchants     int64
	ActiveMerchants    int64
	NewMerchants30Days int64
}
