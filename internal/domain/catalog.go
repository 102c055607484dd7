package domain

import (
	"fmt"
	"strings"
)

// Domain is a named grouping of tables and key metrics offered to the user
// as a scoping context for questions.
type Domain struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Tables           []string `json:"tables"`
	KeyMetrics       []string `json:"key_metrics"`
	StarterQuestions []string `json:"starter_questions,omitempty"`
}

// Notice renders the system notice appended when this domain is selected.
func (d Domain) Notice() string {
	return fmt.Sprintf(
		"You are now exploring the %s domain. Available tables: %s. Key metrics: %s.",
		d.Name,
		strings.Join(d.Tables, ", "),
		strings.Join(d.KeyMetrics, ", "),
	)
}

var catalog = []Domain{
	{
		ID:          "sales",
		Name:        "Sales Performance",
		Description: "Analyze sales data, customer feedback, and project performance metrics",
		Tables:      []string{"sales", "customer_feedback"},
		KeyMetrics: []string{
			"Total Sales",
			"Customer Satisfaction",
			"Sales Growth",
			"Project Success Rate",
		},
		StarterQuestions: []string{
			"Top 5 products by sales",
			"Sales by month",
			"List low-stock products",
		},
	},
	{
		ID:          "employee",
		Name:        "Employee Management",
		Description: "Track employee performance, project assignments, and team productivity",
		Tables:      []string{"employees", "projects", "employee_projects"},
		KeyMetrics: []string{
			"Project Completion Rate",
			"Employee Performance",
			"Team Productivity",
			"Resource Utilization",
		},
		StarterQuestions: []string{
			"Show all employees",
			"What are the top 5 highest paid employees?",
			"How many employees are in each department?",
			"What is the average salary?",
			"List departments with more than 2 employees",
		},
	},
	{
		ID:          "projects",
		Name:        "Project Analytics",
		Description: "Monitor project progress, team assignments, and resource allocation",
		Tables:      []string{"projects", "employee_projects", "employees"},
		KeyMetrics: []string{
			"Project Status",
			"Team Allocation",
			"Resource Distribution",
			"Project Timeline",
		},
		StarterQuestions: []string{
			"Show all projects",
			"Which projects are behind schedule?",
		},
	},
}

// Catalog returns the available data domains.
func Catalog() []Domain {
	out := make([]Domain, len(catalog))
	copy(out, catalog)
	return out
}

// LookupDomain finds a domain by id.
func LookupDomain(id string) (Domain, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Domain{}, false
}
