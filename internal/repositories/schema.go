package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intdb "travelbot/internal/db"
)

// Column is a dataset column; Name matches the CSV header verbatim.
type Column struct {
	Name string
	Type string // TEXT, REAL or INTEGER
}

// Table describes a dataset table loaded from a CSV or XLSX file.
type Table struct {
	Name    string
	File    string
	Columns []Column
}

func textCols(names ...string) []Column {
	out := make([]Column, len(names))
	for i, n := range names {
		out[i] = Column{Name: n, Type: "TEXT"}
	}
	return out
}

var (
	FlightTable = Table{
		Name: "flight",
		File: "synthetic_flight_data",
		Columns: []Column{
			{"Airline", "TEXT"}, {"Date_of_Journey", "TEXT"}, {"Source", "TEXT"},
			{"Destination", "TEXT"}, {"Dep_Time", "TEXT"}, {"Duration", "TEXT"},
			{"Total_Stops", "TEXT"}, {"Additional_Info", "TEXT"}, {"Price", "REAL"},
			{"Arrival_Time", "TEXT"},
		},
	}
	HotelTable = Table{
		Name: "hotel",
		File: "synthetic_hotel_data",
		Columns: []Column{
			{"Hotel_Name", "TEXT"}, {"City", "TEXT"}, {"Check_In_Date", "TEXT"},
			{"Room_Type", "TEXT"}, {"Price_Per_Night", "REAL"}, {"Availability_Status", "TEXT"},
			{"Additional_Info", "TEXT"}, {"Check_Out_Date", "TEXT"}, {"Total_Nights", "INTEGER"},
		},
	}
	CarRentalTable = Table{
		Name: "car_rental",
		File: "synthetic_car_rental_data",
		Columns: []Column{
			{"Car_Rental_Company", "TEXT"}, {"City", "TEXT"}, {"Pickup_Date", "TEXT"},
			{"Car_Type", "TEXT"}, {"Price_Per_Day", "REAL"}, {"Availability_Status", "TEXT"},
			{"Additional_Info", "TEXT"}, {"Return_Date", "TEXT"}, {"Total_Days", "INTEGER"},
		},
	}
	AdvisoryTable = Table{
		Name: "travel_advisory",
		File: "synthetic_travel_advisories",
		Columns: textCols("City", "Advisory_Date", "Advisory_Level", "Reason",
			"Affected_Routes", "Additional_Info", "Validity"),
	}
	RecommendationTable = Table{
		Name:    "recommendations",
		File:    "large_user_recommendations",
		Columns: textCols("locations", "intent", "recommendation"),
	}
)

// DatasetTables lists every table the importer owns.
var DatasetTables = []Table{FlightTable, HotelTable, CarRentalTable, AdvisoryTable, RecommendationTable}

// CreateSQL renders the CREATE TABLE statement for the dialect.
func (t Table) CreateSQL(d intdb.Dialect) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		typ := c.Type
		switch typ {
		case "TEXT":
			typ = "VARCHAR(255)"
		case "REAL":
			typ = "DOUBLE"
		}
		cols[i] = d.QuoteIdent(c.Name) + " " + typ
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.QuoteIdent(t.Name), strings.Join(cols, ", "))
}

// DropSQL renders the DROP TABLE statement for the dialect.
func (t Table) DropSQL(d intdb.Dialect) string {
	return "DROP TABLE IF EXISTS " + d.QuoteIdent(t.Name)
}

// InsertSQL renders a parameterized INSERT over all columns.
func (t Table) InsertSQL(d intdb.Dialect) string {
	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = d.QuoteIdent(c.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.QuoteIdent(t.Name), strings.Join(names, ", "), strings.Join(marks, ", "))
}

func appTables(d intdb.Dialect) []string {
	pk := d.AutoIncrementPK()
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id ` + pk + `,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS user_queries (
			id ` + pk + `,
			user_email VARCHAR(255) NOT NULL DEFAULT '',
			user_query TEXT,
			intent VARCHAR(64),
			locations TEXT,
			dates TEXT,
			created_at BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			booking_id VARCHAR(64) PRIMARY KEY,
			user_email VARCHAR(255) NOT NULL,
			service_type VARCHAR(32) NOT NULL,
			details TEXT,
			booking_date VARCHAR(32) NOT NULL,
			canceled INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS api_data (
			id ` + pk + `,
			service_type VARCHAR(32) NOT NULL,
			cache_key VARCHAR(255) NOT NULL,
			response_data ` + d.Blob() + `,
			created_at BIGINT NOT NULL DEFAULT 0
		)`,
	}
}

// EnsureSchema creates the application and dataset tables when missing.
// Existing dataset rows are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB, d intdb.Dialect) error {
	stmts := appTables(d)
	for _, t := range DatasetTables {
		stmts = append(stmts, t.CreateSQL(d))
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	// users tables created before passwords were supported lack the hash column
	if !d.HasColumn(db, "users", "password_hash") {
		if _, err := db.ExecContext(ctx, `ALTER TABLE users ADD COLUMN password_hash VARCHAR(255) NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("add users.password_hash: %w", err)
		}
	}
	return nil
}
