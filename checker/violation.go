package checker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every [Violation]
var ErrInvalid = errors.New("invalid tree")

// Rule identifies the structural invariant a Violation broke
type Rule int

const (
	RuleNilNode Rule = iota + 1
	RuleNilPath
	RuleParentPrefix     // parent path is not a prefix of the child path
	RuleParentDepth      // child is not exactly one level below its parent
	RuleParentComponents // leading components differ from the parent path
	RuleFileHasChildren
	RuleChildCount // NumChildren disagrees with what Child returns
	RuleBackReference
	RuleDuplicateSibling
	RuleSiblingOrder
	RuleUninitialized // uninitialized tree holds a root or a count
	RuleEmptyTreeCount
	RuleRootHasParent
	RuleRootIsFile
	RuleCycle
	RuleCountMismatch
)

var ruleNames = map[Rule]string{
	RuleNilNode:          "nil node",
	RuleNilPath:          "nil path",
	RuleParentPrefix:     "parent prefix",
	RuleParentDepth:      "parent depth",
	RuleParentComponents: "parent components",
	RuleFileHasChildren:  "file has children",
	RuleChildCount:       "child count",
	RuleBackReference:    "parent back-reference",
	RuleDuplicateSibling: "duplicate sibling",
	RuleSiblingOrder:     "sibling order",
	RuleUninitialized:    "uninitialized state",
	RuleEmptyTreeCount:   "empty tree count",
	RuleRootHasParent:    "root has parent",
	RuleRootIsFile:       "root is file",
	RuleCycle:            "cycle",
	RuleCountMismatch:    "count mismatch",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// Violation is the diagnostic for a failed check: which rule and the paths
// implicated, parent first where there is one.
type Violation struct {
	Rule   Rule
	Paths  []string
	Detail string
}

func newViolation(rule Rule, detail string, paths ...string) *Violation {
	return &Violation{Rule: rule, Paths: paths, Detail: detail}
}

func (v *Violation) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrInvalid.Error())
	sb.WriteString(": ")
	sb.WriteString(v.Rule.String())
	if v.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(v.Detail)
	}
	for _, p := range v.Paths {
		fmt.Fprintf(&sb, " (%s)", p)
	}
	return sb.String()
}

func (v *Violation) Unwrap() error {
	return ErrInvalid
}

// RuleOf returns the rule broken by err, or 0 if err is not a Violation
func RuleOf(err error) Rule {
	var v *Violation
	if errors.As(err, &v) {
		return v.Rule
	}
	return 0
}
