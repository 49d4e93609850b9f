package queryexpr

import (
	"github.com/pkg/errors"
)

// ComplexityLimits defines limits for rule tree complexity.
// A value of 0 means no limit for that metric.
type ComplexityLimits struct {
	MaxDepth      int // Maximum nesting depth of groups
	MaxLeaves     int // Maximum total number of leaf filters
	MaxGroups     int // Maximum total number of groups
	MaxOrBranches int // Maximum children in a single Or group
}

// ComplexityResult contains the calculated complexity metrics of a rule tree.
type ComplexityResult struct {
	Depth      int // Deepest nesting level reached
	Leaves     int // Total number of leaf filters
	Groups     int // Total number of groups
	OrBranches int // Maximum children found in any Or group
}

// Predefined complexity limits
var (
	// DefaultLimits provides reasonable defaults for most use cases.
	DefaultLimits = &ComplexityLimits{
		MaxDepth:      3,
		MaxLeaves:     10,
		MaxGroups:     5,
		MaxOrBranches: 3,
	}

	// StrictLimits provides tighter limits for security-sensitive contexts.
	StrictLimits = &ComplexityLimits{
		MaxDepth:      2,
		MaxLeaves:     5,
		MaxGroups:     3,
		MaxOrBranches: 2,
	}

	// RelaxedLimits provides looser limits for trusted/internal use.
	RelaxedLimits = &ComplexityLimits{
		MaxDepth:      5,
		MaxLeaves:     20,
		MaxGroups:     10,
		MaxOrBranches: 5,
	}
)

// CheckComplexity validates that a rule tree doesn't exceed the specified limits.
// Returns an error describing which limit was exceeded, or nil if within limits.
// If limits is nil, no validation is performed.
func CheckComplexity(rule Rule, limits *ComplexityLimits) error {
	if limits == nil {
		return nil
	}

	result := CalculateComplexity(rule)

	if limits.MaxDepth > 0 && result.Depth > limits.MaxDepth {
		return errors.Errorf("rule depth %d exceeds limit %d", result.Depth, limits.MaxDepth)
	}
	if limits.MaxLeaves > 0 && result.Leaves > limits.MaxLeaves {
		return errors.Errorf("rule leaf count %d exceeds limit %d", result.Leaves, limits.MaxLeaves)
	}
	if limits.MaxGroups > 0 && result.Groups > limits.MaxGroups {
		return errors.Errorf("rule group count %d exceeds limit %d", result.Groups, limits.MaxGroups)
	}
	if limits.MaxOrBranches > 0 && result.OrBranches > limits.MaxOrBranches {
		return errors.Errorf("rule Or branches %d exceeds limit %d", result.OrBranches, limits.MaxOrBranches)
	}

	return nil
}

// CalculateComplexity analyzes a rule tree and returns its complexity metrics.
func CalculateComplexity(rule Rule) *ComplexityResult {
	result := &ComplexityResult{}
	calculateComplexityRecursive(rule, 1, result)
	return result
}

func calculateComplexityRecursive(rule Rule, depth int, result *ComplexityResult) {
	switch r := rule.(type) {
	case *Filter:
		if r == nil {
			return
		}
		if depth > result.Depth {
			result.Depth = depth
		}
		result.Leaves++

	case *Group:
		if r == nil {
			return
		}
		if depth > result.Depth {
			result.Depth = depth
		}
		result.Groups++
		if r.Logic == LogicOr && len(r.Filters) > result.OrBranches {
			result.OrBranches = len(r.Filters)
		}
		for _, child := range r.Filters {
			calculateComplexityRecursive(child, depth+1, result)
		}
	}
}
