package demo

import (
	"fmt"
	"strings"

	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

// ErrUnrecognized reports a question the rule-based translator cannot map to
// SQL. The handler turns it into a 400 with a user-facing detail.
type ErrUnrecognized struct {
	Question string
}

func (e *ErrUnrecognized) Error() string {
	return fmt.Sprintf("could not understand the question: %q. Try one of the suggested questions.", e.Question)
}

// rule maps keyword groups to a canned SQL statement. A question matches when
// every group contributes at least one keyword.
type rule struct {
	keywords    [][]string
	sql         string
	explanation string
}

var rules = []rule{
	{
		keywords:    [][]string{{"top", "highest"}, {"paid", "salary", "salaries"}},
		sql:         `SELECT name, department, salary FROM employees ORDER BY salary DESC LIMIT 5`,
		explanation: "This query lists the five employees with the highest salaries, sorted from highest to lowest.",
	},
	{
		keywords:    [][]string{{"average", "avg", "mean"}, {"salary", "salaries", "pay"}},
		sql:         `SELECT ROUND(AVG(salary), 2) AS average_salary FROM employees`,
		explanation: "This query computes the average salary across all employees.",
	},
	{
		keywords:    [][]string{{"how many", "count", "number of"}, {"employees"}, {"department", "departments"}},
		sql:         `SELECT department, COUNT(*) AS employee_count FROM employees GROUP BY department ORDER BY employee_count DESC`,
		explanation: "This query counts employees per department, largest department first.",
	},
	{
		keywords:    [][]string{{"departments"}, {"more than", "over", "at least"}},
		sql:         `SELECT department, COUNT(*) AS employee_count FROM employees GROUP BY department HAVING COUNT(*) > 2 ORDER BY employee_count DESC`,
		explanation: "This query finds departments that have more than two employees.",
	},
	{
		keywords:    [][]string{{"all", "show", "list"}, {"employees"}},
		sql:         `SELECT name, department, salary, hire_date FROM employees ORDER BY name`,
		explanation: "This query lists every employee with their department, salary and hire date.",
	},
	{
		keywords:    [][]string{{"top", "best"}, {"products"}, {"sales", "selling", "revenue"}},
		sql:         `SELECT product, SUM(amount) AS total_sales FROM sales GROUP BY product ORDER BY total_sales DESC LIMIT 5`,
		explanation: "This query ranks products by total sales amount and keeps the top five.",
	},
	{
		keywords:    [][]string{{"sales", "revenue"}, {"month", "monthly"}},
		sql:         `SELECT strftime('%Y-%m', sale_date) AS month, SUM(amount) AS total_sales FROM sales GROUP BY month ORDER BY month`,
		explanation: "This query aggregates sales amounts by calendar month.",
	},
	{
		keywords:    [][]string{{"sales", "revenue"}, {"region", "regions"}},
		sql:         `SELECT region, SUM(amount) AS total_sales FROM sales GROUP BY region ORDER BY total_sales DESC`,
		explanation: "This query totals sales per region, highest first.",
	},
	{
		keywords:    [][]string{{"low-stock", "low stock", "out of stock", "restock"}},
		sql:         `SELECT name, category, stock FROM products WHERE stock < 20 ORDER BY stock`,
		explanation: "This query lists products whose stock level is below twenty units.",
	},
	{
		keywords:    [][]string{{"feedback", "rating", "ratings", "satisfaction"}},
		sql:         `SELECT product, ROUND(AVG(rating), 1) AS average_rating, COUNT(*) AS reviews FROM customer_feedback GROUP BY product ORDER BY average_rating DESC`,
		explanation: "This query averages customer ratings per product.",
	},
	{
		keywords:    [][]string{{"behind schedule", "delayed", "late", "overdue"}},
		sql:         `SELECT name, status, deadline FROM projects WHERE status = 'Delayed' ORDER BY deadline`,
		explanation: "This query lists projects whose status is Delayed, ordered by deadline.",
	},
	{
		keywords:    [][]string{{"all", "show", "list"}, {"projects"}},
		sql:         `SELECT name, status, deadline FROM projects ORDER BY name`,
		explanation: "This query lists every project with its status and deadline.",
	},
	{
		keywords:    [][]string{{"who", "assigned", "working on", "team"}, {"project", "projects"}},
		sql:         `SELECT p.name AS project, e.name AS employee, ep.role FROM employee_projects ep JOIN employees e ON e.id = ep.employee_id JOIN projects p ON p.id = ep.project_id ORDER BY p.name, e.name`,
		explanation: "This query shows which employees are assigned to each project and in what role.",
	},
}

// browseTables are the fallback targets when a question only names a table.
var browseTables = []string{
	"employees", "departments", "products", "sales",
	"customer_feedback", "projects", "employee_projects",
}

// Translate maps a natural-language question to SQL plus an explanation.
// Matching is keyword based; questions it cannot place return
// *ErrUnrecognized.
func Translate(question, domainID string) (sqlStr, explanation string, err error) {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return "", "", &ErrUnrecognized{Question: question}
	}

	for _, r := range rules {
		if r.matches(q) {
			return r.sql, r.explanation, nil
		}
	}

	for _, table := range browseTables {
		if strings.Contains(q, strings.ReplaceAll(table, "_", " ")) || strings.Contains(q, table) {
			return fmt.Sprintf("SELECT * FROM %s LIMIT 25", table),
				fmt.Sprintf("This query shows a sample of rows from the %s table.", table),
				nil
		}
	}

	return "", "", &ErrUnrecognized{Question: question}
}

func (r rule) matches(q string) bool {
	for _, group := range r.keywords {
		found := false
		for _, kw := range group {
			if strings.Contains(q, kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Suggest returns question candidates. With a domain id it returns that
// domain's starter questions; with partial input it returns starter questions
// sharing a word with the input; otherwise a cross-domain sample.
func Suggest(question, domainID string) []string {
	if domainID != "" {
		if d, ok := domain.LookupDomain(domainID); ok {
			return append([]string(nil), d.StarterQuestions...)
		}
		return nil
	}

	var all []string
	for _, d := range domain.Catalog() {
		all = append(all, d.StarterQuestions...)
	}

	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return all
	}

	var matched []string
	for _, s := range all {
		if suggestionMatches(s, q) {
			matched = append(matched, s)
		}
	}
	return matched
}

func suggestionMatches(suggestion, q string) bool {
	s := strings.ToLower(suggestion)
	if strings.Contains(s, q) {
		return true
	}
	for _, word := range strings.Fields(q) {
		if len(word) >= 3 && strings.Contains(s, word) {
			return true
		}
	}
	return false
}
