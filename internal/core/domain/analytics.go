package domain

// Stats are the headline counters on the admin dashboard.
type Stats struct {
	TotalUsers    int64   `json:"totalUsers"`
	TotalBookings int64   `json:"totalBookings"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalExhibits int64   `json:"totalExhibits"`
}

// MonthRevenue is the revenue booked in a calendar month (YYYY-MM).
type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// DayVisitors is the number of tickets booked on a day (YYYY-MM-DD).
type DayVisitors struct {
	Day      string `json:"day"`
	Visitors int64  `json:"visitors"`
}

// TicketsSold is the number of tickets sold for one event name.
type TicketsSold struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}
