package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search         string
	Status         Status
	Nationality    Nationality
	CurrentLevel   GenderedLevel
	InitialSession string
	ActiveOnly     bool
	Page           int
	PageSize       int
}
