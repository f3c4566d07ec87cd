package dto

import "github.com/morlov/merchant-admin/internal/domain/model"

type DashboardResponse struct {
	TotalUsers         int64 `json:"total_users"`
	TotalMerchants     int64 `json:"total_merchants"`
	ActiveMerchants    int64 `json:"active_merchants"`
	NewMerchants30Days int64 `json:"new_merchants_30_days"`
}

func NewDashboardResponse(summary model.DashboardSummary) DashboardResponse {
	return DashboardResponse{
		TotalUsers:         summary.TotalUsers,
		TotalMerchants:     summary.TotalMerchants,
		ActiveMerchants:    summary.ActiveMerchants,
		NewMerchants30Days: summary.NewMerchants30Days,
	}
}
