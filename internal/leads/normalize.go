package leads

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sells-group/lead-export/internal/model"
	"github.com/sells-group/lead-export/pkg/apollo"
)

// Candidate key paths per output field, in priority order. Segments are
// separated by dots; numeric segments index into arrays.
var (
	firstNamePaths      = []string{"first_name"}
	lastNamePaths       = []string{"last_name"}
	titlePaths          = []string{"title"}
	companyNamePaths    = []string{"organization.name", "organization_name"}
	cityPaths           = []string{"city"}
	statePaths          = []string{"state"}
	countryPaths        = []string{"country"}
	emailPaths          = []string{"email", "emails.0", "emails.0.email"}
	phonePaths          = []string{"phone_numbers.0.raw_number", "phone_numbers.0.number"}
	linkedInPaths       = []string{"linkedin_url", "linkedIn_url", "linkedin.url"}
	companyWebsitePaths = []string{"organization.website_url"}
)

// Normalize maps one upstream record onto the fixed Lead schema. It never
// fails: unresolvable fields are left empty.
func Normalize(raw apollo.RawContact) model.Lead {
	return model.Lead{
		FirstName:      firstOf(raw, firstNamePaths),
		LastName:       firstOf(raw, lastNamePaths),
		Title:          firstOf(raw, titlePaths),
		CompanyName:    firstOf(raw, companyNamePaths),
		City:           firstOf(raw, cityPaths),
		State:          firstOf(raw, statePaths),
		Country:        firstOf(raw, countryPaths),
		Email:          firstOf(raw, emailPaths),
		Phone:          firstOf(raw, phonePaths),
		LinkedInURL:    firstOf(raw, linkedInPaths),
		CompanyWebsite: firstOf(raw, companyWebsitePaths),
	}
}

// firstOf returns the first candidate path that resolves to a truthy scalar.
func firstOf(raw map[string]any, paths []string) string {
	for _, p := range paths {
		if s, ok := scalarString(lookup(raw, p)); ok {
			return s
		}
	}
	return ""
}

// lookup walks a dotted path through nested maps and arrays. Any missing
// or mistyped step yields nil.
func lookup(raw map[string]any, path string) any {
	var cur any = raw
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[seg]
		case apollo.RawContact:
			cur = node[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

// scalarString renders non-empty strings and non-zero numbers. Everything
// else (nil, bools, objects, arrays, empty, zero) is treated as absent.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		if t == 0 {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		if f, err := t.Float64(); err != nil || f == 0 {
			return "", false
		}
		return t.String(), true
	default:
		return "", false
	}
}
