package models

type DirectoryStats struct {
	TotalDrivers  int `json:"total_drivers"`
	OnlineDrivers int `json:"online_drivers"`
	TotalAreas    int `json:"total_areas"`
}

type DashboardStats struct {
	TotalDrivers    int `json:"total_drivers"`
	ApprovedDrivers int `json:"approved_drivers"`
	PendingDrivers  int `json:"pending_drivers"`
	OnlineDrivers   int `json:"online_drivers"`
}
