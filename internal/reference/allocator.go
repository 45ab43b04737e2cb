// Package reference mints sequential internal reference codes of the form
// {PREFIX}{YY}/{MM}/{NN}, one sequence per prefix and month.
package reference

import (
	"fmt"
	"regexp"
	"strconv"

	"dumpster-backoffice/internal/domain"
)

type Policy string

const (
	// PolicyMaxPlusOne continues after the highest number ever issued in the scope.
	// Used for references tied to an invoice's issue month; gaps stay gaps.
	PolicyMaxPlusOne Policy = "max-plus-one"
	// PolicyFirstGap reuses the lowest unused number. Used for references tied to today.
	PolicyFirstGap Policy = "first-gap"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyMaxPlusOne, PolicyFirstGap:
		return Policy(s), nil
	}
	return "", domain.NewValidationError("policy", "unknown reference policy %q", s)
}

// Scope is one numbering sequence.
type Scope struct {
	Prefix string
	Year   int
	Month  int
}

// ScopeFor returns the scope of prefix for the month containing day.
func ScopeFor(prefix string, day domain.Date) Scope {
	return Scope{Prefix: prefix, Year: day.Year(), Month: int(day.Month())}
}

// Key is the literal code prefix shared by every code in the scope, e.g. "RV24/03/".
func (s Scope) Key() string {
	return fmt.Sprintf("%s%02d/%02d/", s.Prefix, s.Year%100, s.Month)
}

func (s Scope) Format(n int) string {
	return fmt.Sprintf("%s%02d", s.Key(), n)
}

// Pattern matches codes of this scope and captures the sequence number.
func (s Scope) Pattern() *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(s.Key()) + `(\d+)$`)
}

// Numbers extracts the sequence numbers of every code in existing that belongs to the scope.
func (s Scope) Numbers(existing []string) []int {
	re := s.Pattern()
	var out []int
	for _, code := range existing {
		m := re.FindStringSubmatch(code)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Next returns the next code for scope given every code ever issued in it,
// cancelled ones included.
func Next(scope Scope, existing []string, policy Policy) (string, error) {
	used := scope.Numbers(existing)

	switch policy {
	case PolicyFirstGap:
		taken := make(map[int]struct{}, len(used))
		for _, n := range used {
			taken[n] = struct{}{}
		}
		n := 1
		for {
			if _, ok := taken[n]; !ok {
				return scope.Format(n), nil
			}
			n++
		}
	case PolicyMaxPlusOne:
		highest := 0
		for _, n := range used {
			if n > highest {
				highest = n
			}
		}
		return scope.Format(highest + 1), nil
	}
	return "", fmt.Errorf("unknown reference policy %q", string(policy))
}

// NextN allocates count consecutive codes under policy, treating each one as issued
// before picking the following.
func NextN(scope Scope, existing []string, policy Policy, count int) ([]string, error) {
	issued := make([]string, 0, len(existing)+count)
	issued = append(issued, existing...)
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code, err := Next(scope, issued, policy)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
		issued = append(issued, code)
	}
	return out, nil
}
