package domain

// AssignmentDetails is the value record attached to a worker when an
// admin assigns a job. It has no identity of its own; it is set and
// cleared together with AssignedJobID.
type AssignmentDetails struct {
	JobID         string `json:"jobId"`
	Location      string `json:"location"`
	GuideName     string `json:"guideName"`
	GuidePhone    string `json:"guidePhone"`
	ReportingTime string `json:"reportingTime"`
	Instructions  string `json:"instructions"`
	Salary        string `json:"salary"`
}

// Worker is a registered daily-wage worker. AssignedJobID is non-nil
// exactly when AssignmentDetails is non-nil.
type Worker struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Phone             string             `json:"phone"`
	Email             string             `json:"email,omitempty"`
	Skill             string             `json:"skill"`
	Location          string             `json:"location"`
	AssignedJobID     *string            `json:"assignedJobId"`
	AssignmentDetails *AssignmentDetails `json:"assignmentDetails,omitempty"`
}

// Registration is the payload a worker submits before an id is issued.
type Registration struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Skill    string `json:"skill"`
	Location string `json:"location"`
}
