package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Omit selects dimensions a query ignores even when they are set.
type Omit uint8

const (
	OmitSex Omit = 1 << iota
	OmitCommunity
	OmitService
)

// Column names the filters bind to. Queries alias paciente as p and
// ingreso as i.
const (
	ColAdmissionDate = "i.fecha_de_ingreso"
	ColSex           = "p.sexo"
	ColCommunity     = "p.comunidad_autonoma"
	ColService       = "i.servicio"
)

// Where accumulates AND-ed predicates and their positional arguments.
type Where struct {
	clauses []string
	args    []interface{}
}

// NewWhere starts a clause list with fixed, argument-free predicates.
func NewWhere(fixed ...string) *Where {
	w := &Where{}
	w.clauses = append(w.clauses, fixed...)
	return w
}

// Add appends a predicate; each "?" in expr is bound to the next argument.
func (w *Where) Add(expr string, args ...interface{}) *Where {
	var b strings.Builder
	n := 0
	for _, r := range expr {
		if r == '?' && n < len(args) {
			b.WriteString(w.Bind(args[n]))
			n++
			continue
		}
		b.WriteRune(r)
	}
	w.clauses = append(w.clauses, b.String())
	return w
}

// Bind registers an argument and returns its placeholder, for values used
// outside the WHERE clause (LIMIT, HAVING, window thresholds).
func (w *Where) Bind(arg interface{}) string {
	w.args = append(w.args, arg)
	return "$" + strconv.Itoa(len(w.args))
}

// SQL renders "WHERE a AND b", or "" when there are no predicates.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

// Conditions renders the predicates without the WHERE keyword, or "TRUE"
// when empty, for queries that repeat the same filter in several branches.
func (w *Where) Conditions() string {
	if len(w.clauses) == 0 {
		return "TRUE"
	}
	return strings.Join(w.clauses, " AND ")
}

// Args returns the bound arguments in placeholder order.
func (w *Where) Args() []interface{} {
	return w.args
}

// Apply adds the predicates for every active filter not in omit.
func (p Params) Apply(w *Where, omit Omit) *Where {
	if p.DateStart != nil {
		w.Add(ColAdmissionDate+" >= ?", *p.DateStart)
	}
	if p.DateEnd != nil {
		w.Add(ColAdmissionDate+" <= ?", *p.DateEnd)
	}
	if omit&OmitSex == 0 && Active(p.Sex) {
		sex, err := strconv.Atoi(p.Sex)
		if err == nil {
			w.Add(ColSex+" = ?", sex)
		}
	}
	if omit&OmitCommunity == 0 && Active(p.Community) {
		w.Add(ColCommunity+" = ?", p.Community)
	}
	if omit&OmitService == 0 && Active(p.Service) {
		w.Add(ColService+" = ?", p.Service)
	}
	return w
}

func (w *Where) String() string {
	return fmt.Sprintf("%s %v", w.SQL(), w.args)
}
