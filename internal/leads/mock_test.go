package leads

import (
	"context"
	"fmt"
	"sync"

	"github.com/sells-group/lead-export/pkg/apollo"
)

// fakeClient serves canned pages keyed by page number (1-based) and records
// every request it receives.
type fakeClient struct {
	mu       sync.Mutex
	pages    map[int][]apollo.RawContact
	errs     map[int]error
	requests []apollo.SearchRequest
	search   func(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error)
}

func (f *fakeClient) SearchPeople(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.search != nil {
		return f.search(ctx, req)
	}
	if err, ok := f.errs[req.Page]; ok {
		return nil, err
	}
	return &apollo.SearchResponse{Contacts: f.pages[req.Page]}, nil
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// contacts builds n distinct raw contacts tagged with the page number.
func contacts(page, n int) []apollo.RawContact {
	out := make([]apollo.RawContact, n)
	for i := range out {
		out[i] = apollo.RawContact{
			"first_name": fmt.Sprintf("p%d", page),
			"last_name":  fmt.Sprintf("r%d", i),
		}
	}
	return out
}
