// Package query filters, sorts, and pages the in-memory user set.
package query

import (
	"errors"
	"sort"
	"strings"

	"github.com/BradenHooton/coffer/internal/models"
)

// ErrUnknownField is returned when a search spec names a field outside
// the searchable allow-list.
var ErrUnknownField = errors.New("unknown search field")

// Request describes one listing query. Search and Sort are
// "field:value" and "field:direction" specs; malformed specs are
// ignored rather than failing the request.
type Request struct {
	Page     int
	PageSize int
	Search   string
	Sort     string
}

// Result is a computed page over the filtered user set.
type Result struct {
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
	TotalCount  int                  `json:"total_count"`
	TotalPages  int                  `json:"total_pages"`
	HasPrevious bool                 `json:"has_previous_page"`
	HasNext     bool                 `json:"has_next_page"`
	Items       []models.UserSummary `json:"items"`
}

// searchFields maps searchable field names to accessors. Field access
// is allow-listed; arbitrary attribute lookup is never exposed.
var searchFields = map[string]func(*models.User) string{
	"id":             func(u *models.User) string { return u.ID },
	"name":           func(u *models.User) string { return u.Name },
	"email":          func(u *models.User) string { return u.Email },
	"phone":          func(u *models.User) string { return u.Phone },
	"account_number": func(u *models.User) string { return u.AccountNumber },
	"balance":        func(u *models.User) string { return u.Balance.String() },
}

// sortFields is the sortable allow-list. Any other field name falls
// back to sorting by email.
var sortFields = map[string]func(*models.User) string{
	"name":  func(u *models.User) string { return u.Name },
	"email": func(u *models.User) string { return u.Email },
}

// Run applies filter, sort, pagination, and projection in that order.
func Run(users []*models.User, req Request) (*Result, error) {
	filtered, err := applySearch(users, req.Search)
	if err != nil {
		return nil, err
	}

	applySort(filtered, req.Sort)

	return paginate(filtered, req.Page, req.PageSize), nil
}

// applySearch keeps records whose named field contains value as a
// case-sensitive substring. A spec that does not split into exactly
// two parts is silently ignored.
func applySearch(users []*models.User, spec string) ([]*models.User, error) {
	field, value, ok := splitSpec(spec)
	if !ok {
		return users, nil
	}

	accessor, known := searchFields[strings.ToLower(field)]
	if !known {
		return nil, ErrUnknownField
	}

	matched := make([]*models.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(accessor(u), value) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

// applySort orders users in place. Comparison is case-insensitive
// lexicographic on the field's string value; the sort is stable so
// equal keys keep their relative order.
func applySort(users []*models.User, spec string) {
	field, direction, ok := splitSpec(spec)
	if !ok {
		return
	}

	accessor, known := sortFields[strings.ToLower(field)]
	if !known {
		accessor = sortFields["email"]
	}

	desc := strings.EqualFold(direction, "desc")

	sort.SliceStable(users, func(i, j int) bool {
		a := strings.ToLower(accessor(users[i]))
		b := strings.ToLower(accessor(users[j]))
		if desc {
			return a > b
		}
		return a < b
	})
}

// paginate slices the filtered set into the requested page. A
// non-positive page size means no limit: one page holding everything.
// Pages below 1 clamp to 1; pages past the end yield no items but
// still report correct totals.
func paginate(users []*models.User, page, pageSize int) *Result {
	total := len(users)

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = total
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = total / pageSize
		if total%pageSize != 0 {
			totalPages++
		}
	}

	// Page and page size arrive straight from the query string, so the
	// offset arithmetic must not overflow for extreme values. The
	// multiplication only happens once it is known to land inside the
	// set; anything past the end is an empty page.
	start := total
	if pageSize > 0 && page-1 <= (total-1)/pageSize {
		start = (page - 1) * pageSize
	}
	end := total
	if pageSize < total-start {
		end = start + pageSize
	}

	items := make([]models.UserSummary, 0, end-start)
	for _, u := range users[start:end] {
		items = append(items, u.Summary())
	}

	return &Result{
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
		Items:       items,
	}
}

// splitSpec parses a "field:value" pair. It reports ok only when the
// spec splits into exactly two non-empty-field parts after trimming.
func splitSpec(spec string) (field, value string, ok bool) {
	if strings.TrimSpace(spec) == "" {
		return "", "", false
	}

	parts := strings.Split(spec, ":")
	if len(parts) != 2 {
		return "", "", false
	}

	field = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])
	if field == "" {
		return "", "", false
	}
	return field, value, true
}
