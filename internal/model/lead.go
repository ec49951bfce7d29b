package model

// LeadColumns is the fixed export column order for leads.
var LeadColumns = []string{
	"first_name",
	"last_name",
	"title",
	"company_name",
	"city",
	"state",
	"country",
	"email",
	"phone",
	"linkedin_url",
	"company_website",
}

// Lead is a normalized contact record. Every field is always set; missing
// upstream data is the empty string.
type Lead struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Title          string `json:"title"`
	CompanyName    string `json:"company_name"`
	City           string `json:"city"`
	State          string `json:"state"`
	Country        string `json:"country"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	LinkedInURL    string `json:"linkedin_url"`
	CompanyWebsite string `json:"company_website"`
}

// Row returns the lead's values in LeadColumns order.
func (l Lead) Row() []string {
	return []string{
		l.FirstName,
		l.LastName,
		l.Title,
		l.CompanyName,
		l.City,
		l.State,
		l.Country,
		l.Email,
		l.Phone,
		l.LinkedInURL,
		l.CompanyWebsite,
	}
}
