package domain

const DefaultContactPhone = "+91 9876543210"

// Job is a posted listing. Jobs are immutable once created; there is
// no edit or delete path.
type Job struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Salary   string `json:"salary"`
	Location string `json:"location"`
	Time     string `json:"time"`
	Color    string `json:"color,omitempty"`
	Category string `json:"category,omitempty"`
	Phone    string `json:"phone,omitempty"`
}
