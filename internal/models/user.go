package models

// UserSummary is the lightweight user representation embedded in posts
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

// UserSummaryPage is the response of the select=username,image user listing
type UserSummaryPage struct {
	Users []UserSummary `json:"users"`
	Total int           `json:"total"`
}

// Find returns the summary with the given id
func (p *UserSummaryPage) Find(id int64) (*UserSummary, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Users {
		if p.Users[i].ID == id {
			u := p.Users[i]
			return &u, true
		}
	}
	return nil, false
}

// Coordinates is a geographic position
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address is a postal address
type Address struct {
	Address     string      `json:"address"`
	City        string      `json:"city"`
	State       string      `json:"state,omitempty"`
	StateCode   string      `json:"stateCode,omitempty"`
	PostalCode  string      `json:"postalCode"`
	Coordinates Coordinates `json:"coordinates"`
	Country     string      `json:"country,omitempty"`
}

// Company is the employer section of a user profile
type Company struct {
	Department string  `json:"department"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Address    Address `json:"address"`
}

// User is the full profile, fetched on demand
type User struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Image      string  `json:"image"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	MaidenName string  `json:"maidenName,omitempty"`
	Age        int     `json:"age"`
	Gender     string  `json:"gender,omitempty"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	BirthDate  string  `json:"birthDate,omitempty"`
	University string  `json:"university,omitempty"`
	Address    Address `json:"address"`
	Company    Company `json:"company"`
}

// Summary returns the lightweight representation of the profile
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Image: u.Image}
}
