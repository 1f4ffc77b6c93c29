package models

// ServiceRevenue одна строка отчёта о выручке, агрегированная по сервису.
type ServiceRevenue struct {
	ServiceName        string
	TotalSubscriptions int
	TotalMonths        int
	PlanPrice          float64 // Цена тарифа, по которому считается выручка
	TotalRevenue       float64
}
