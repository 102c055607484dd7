package demo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

// Warehouse is the demo data store: a small SQLite database seeded with
// sales, employee and project data matching the domain catalog. Use
// ":memory:" as the path for an ephemeral instance.
type Warehouse struct {
	db *sql.DB
}

// OpenWarehouse opens the database at path and seeds it when empty.
func OpenWarehouse(path string) (*Warehouse, error) {
	if path == "" {
		path = ":memory:"
	}

	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	w := &Warehouse{db: db}
	if err := w.seed(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

// Close closes the connection.
func (w *Warehouse) Close() error {
	if w.db != nil {
		err := w.db.Close()
		w.db = nil
		return err
	}
	return nil
}

// Ping verifies the connection is alive.
func (w *Warehouse) Ping(ctx context.Context) error {
	if w.db == nil {
		return fmt.Errorf("not connected")
	}
	return w.db.PingContext(ctx)
}

// Query runs a read-only SQL statement and returns rows with their column
// order intact.
func (w *Warehouse) Query(ctx context.Context, sqlStr string) (domain.ResultSet, error) {
	rows, err := w.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results domain.ResultSet
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		fields := make([]domain.Field, len(columns))
		for i, col := range columns {
			v := values[i]
			// []byte to string for clean JSON serialization
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			fields[i] = domain.Field{Name: col, Value: v}
		}
		results = append(results, domain.NewRecord(fields...))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

// SchemaDDL returns the full schema as DDL text.
func (w *Warehouse) SchemaDDL(ctx context.Context) (string, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT name, sql
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		  AND sql IS NOT NULL
		ORDER BY name
	`)
	if err != nil {
		return "", fmt.Errorf("failed to get schema: %w", err)
	}
	defer rows.Close()

	var ddl strings.Builder
	for rows.Next() {
		var name, createSQL string
		if err := rows.Scan(&name, &createSQL); err != nil {
			return "", fmt.Errorf("failed to scan: %w", err)
		}

		ddl.WriteString(createSQL)
		ddl.WriteString(";\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("row iteration error: %w", err)
	}

	return ddl.String(), nil
}

func (w *Warehouse) seed() error {
	var count int
	err := w.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'employees'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = w.db.Exec(`
		CREATE TABLE departments (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE employees (
			id         INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			department TEXT NOT NULL,
			salary     REAL NOT NULL,
			hire_date  TEXT NOT NULL
		);
		CREATE TABLE products (
			id       INTEGER PRIMARY KEY,
			name     TEXT NOT NULL,
			category TEXT NOT NULL,
			price    REAL NOT NULL,
			stock    INTEGER NOT NULL
		);
		CREATE TABLE sales (
			id        INTEGER PRIMARY KEY,
			product   TEXT NOT NULL,
			region    TEXT NOT NULL,
			amount    REAL NOT NULL,
			sale_date TEXT NOT NULL
		);
		CREATE TABLE customer_feedback (
			id      INTEGER PRIMARY KEY,
			product TEXT NOT NULL,
			rating  INTEGER NOT NULL,
			comment TEXT NOT NULL
		);
		CREATE TABLE projects (
			id       INTEGER PRIMARY KEY,
			name     TEXT NOT NULL,
			status   TEXT NOT NULL,
			deadline TEXT NOT NULL
		);
		CREATE TABLE employee_projects (
			employee_id INTEGER NOT NULL REFERENCES employees(id),
			project_id  INTEGER NOT NULL REFERENCES projects(id),
			role        TEXT NOT NULL,
			PRIMARY KEY (employee_id, project_id)
		);

		INSERT INTO departments (id, name) VALUES
			(1, 'Engineering'), (2, 'Sales'), (3, 'Marketing'), (4, 'Human Resources');

		INSERT INTO employees (id, name, department, salary, hire_date) VALUES
			(1, 'Alice Johnson',  'Engineering',     98000, '2021-03-15'),
			(2, 'Bob Smith',      'Engineering',     87000, '2022-07-01'),
			(3, 'Carol White',    'Engineering',     92000, '2020-11-20'),
			(4, 'David Brown',    'Sales',           64000, '2023-01-09'),
			(5, 'Eva Green',      'Sales',           71000, '2021-08-30'),
			(6, 'Frank Miller',   'Sales',           59000, '2024-02-12'),
			(7, 'Grace Lee',      'Marketing',       68000, '2022-04-18'),
			(8, 'Henry Davis',    'Marketing',       62000, '2023-09-05'),
			(9, 'Irene Clark',    'Human Resources', 57000, '2020-06-22'),
			(10, 'Jack Wilson',   'Engineering',    105000, '2019-12-02');

		INSERT INTO products (id, name, category, price, stock) VALUES
			(1, 'Laptop Pro',       'Electronics', 1499.00, 34),
			(2, 'Wireless Mouse',   'Electronics',   29.99, 120),
			(3, 'USB-C Dock',       'Electronics',  189.00, 12),
			(4, 'Standing Desk',    'Furniture',    549.00, 8),
			(5, 'Office Chair',     'Furniture',    329.00, 45),
			(6, 'Monitor 27"',      'Electronics',  399.00, 17),
			(7, 'Desk Lamp',        'Furniture',     49.00, 95);

		INSERT INTO sales (id, product, region, amount, sale_date) VALUES
			(1,  'Laptop Pro',     'West',  14990.00, '2024-01-12'),
			(2,  'Laptop Pro',     'East',  10493.00, '2024-02-03'),
			(3,  'Wireless Mouse', 'West',    899.70, '2024-02-17'),
			(4,  'USB-C Dock',     'North',  2835.00, '2024-03-05'),
			(5,  'Standing Desk',  'East',   4392.00, '2024-03-21'),
			(6,  'Office Chair',   'South',  3290.00, '2024-04-02'),
			(7,  'Monitor 27"',    'West',   7980.00, '2024-04-19'),
			(8,  'Laptop Pro',     'South',  8994.00, '2024-05-08'),
			(9,  'Desk Lamp',      'North',   735.00, '2024-05-26'),
			(10, 'Monitor 27"',    'East',   3990.00, '2024-06-11');

		INSERT INTO customer_feedback (id, product, rating, comment) VALUES
			(1, 'Laptop Pro',     5, 'Excellent build quality'),
			(2, 'Wireless Mouse', 4, 'Works fine, battery could be better'),
			(3, 'Standing Desk',  3, 'Wobbly at full height'),
			(4, 'Monitor 27"',    5, 'Great color accuracy'),
			(5, 'USB-C Dock',     2, 'Runs hot under load');

		INSERT INTO projects (id, name, status, deadline) VALUES
			(1, 'Website Redesign',   'In Progress', '2024-09-30'),
			(2, 'Mobile App Launch',  'Delayed',     '2024-07-15'),
			(3, 'Data Migration',     'Completed',   '2024-03-31'),
			(4, 'CRM Integration',    'In Progress', '2024-11-20'),
			(5, 'Security Audit',     'Delayed',     '2024-08-01');

		INSERT INTO employee_projects (employee_id, project_id, role) VALUES
			(1, 1, 'Lead'),
			(2, 1, 'Developer'),
			(3, 3, 'Lead'),
			(10, 4, 'Architect'),
			(2, 2, 'Developer'),
			(7, 1, 'Designer'),
			(5, 4, 'Analyst');
	`)
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	return nil
}
