package ir

import (
	"strconv"
	"strings"
)

// DeleteRule is a referential action code as reported by JDBC-style metadata
type DeleteRule int

const (
	DeleteRuleCascade            DeleteRule = 0
	DeleteRuleRestrict           DeleteRule = 1
	DeleteRuleSetNull            DeleteRule = 2
	DeleteRuleNoAction           DeleteRule = 3
	DeleteRuleSetDefault         DeleteRule = 4
	DeleteRuleInitiallyDeferred  DeleteRule = 5
	DeleteRuleInitiallyImmediate DeleteRule = 6
	DeleteRuleNotDeferrable      DeleteRule = 7
)

// String returns the SQL spelling of the rule, or "" for codes without an ON DELETE clause
func (r DeleteRule) String() string {
	switch r {
	case DeleteRuleCascade:
		return "CASCADE"
	case DeleteRuleSetNull:
		return "SET NULL"
	case DeleteRuleNoAction:
		return "NO ACTION"
	case DeleteRuleSetDefault:
		return "SET DEFAULT"
	default:
		return ""
	}
}

// Rule parses the stored delete rule code. ok is false when the code is blank or not numeric.
func (fk *ForeignKey) Rule() (rule DeleteRule, ok bool) {
	raw := strings.TrimSpace(fk.DeleteRule)
	if raw == "" {
		return 0, false
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return DeleteRule(code), true
}
