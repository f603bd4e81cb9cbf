package response

type DashboardStats struct {
	TotalDrones      int64            `json:"totalDrones"`
	DronesByStatus   map[string]int64 `json:"dronesByStatus"`
	ActiveDeliveries int64            `json:"activeDeliveries"`
	PendingOrders    int64            `json:"pendingOrders"`
	CompletedOrders  int64            `json:"completedOrders"`
	TotalOrders      int64            `json:"totalOrders"`
}
