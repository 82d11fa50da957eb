package models

type Store struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
	Address string `json:"address"`
}

type OrderStats struct {
	TimeRange         string              `json:"timeRange"`
	TotalOrders       int                 `json:"totalOrders"`
	TotalRevenue      float64             `json:"totalRevenue"`
	AverageOrderValue float64             `json:"averageOrderValue"`
	ByStatus          map[OrderStatus]int `json:"byStatus"`
}

type UserProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ExportFormat of GET /orders/export/{format}/{storeId}.
type ExportFormat string

const (
	ExportFormatCSV   ExportFormat = "csv"
	ExportFormatExcel ExportFormat = "excel"
)

func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatExcel
}
