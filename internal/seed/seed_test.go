package seed

import (
	"context"
	"database/sql/driver"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/xuri/excelize/v2"

	intdb "travelbot/internal/db"
	"travelbot/internal/repositories"
)

func expectImport(mock sqlmock.Sqlmock, table string, rows ...[]driver.Value) {
	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS `" + table + "`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS `" + table + "`").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO `" + table + "`")
	for _, r := range rows {
		prep.ExpectExec().WithArgs(r...).WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()
}

func TestImportTableCSV(t *testing.T) {
	dir := t.TempDir()
	csv := "Car_Type,City,Car_Rental_Company,Price_Per_Day,Total_Days,Pickup_Date\n" +
		"SUV,Delhi,Hertz,\"3,000\",3,2025-02-15\n" +
		"Sedan,Pune,Avis,,x,\n"
	if err := os.WriteFile(filepath.Join(dir, "synthetic_car_rental_data.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// column order follows the table, not the file header
	expectImport(mock, "car_rental",
		[]driver.Value{"Hertz", "Delhi", "2025-02-15", "SUV", 3000.0, nil, nil, nil, int64(3)},
		[]driver.Value{"Avis", "Pune", nil, "Sedan", nil, nil, nil, nil, nil},
	)

	im := NewImporter(db, intdb.MySQL, dir, nil)
	n, err := im.ImportTable(context.Background(), repositories.CarRentalTable)
	if err != nil {
		t.Fatalf("ImportTable: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d rows, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestImportTableXLSX(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &[]any{"Locations", "Intent", "Recommendation"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]any{"Goa", "hotel_booking", "Try a beach resort"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(filepath.Join(dir, "large_user_recommendations.xlsx")); err != nil {
		t.Fatal(err)
	}
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	expectImport(mock, "recommendations", []driver.Value{"Goa", "hotel_booking", "Try a beach resort"})

	n, err := NewImporter(db, intdb.MySQL, dir, nil).ImportTable(context.Background(), repositories.RecommendationTable)
	if err != nil || n != 1 {
		t.Fatalf("ImportTable = %d, %v", n, err)
	}
}

func TestImportAllSkipsMissingFiles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	counts, err := NewImporter(db, intdb.MySQL, t.TempDir(), nil).ImportAll(context.Background())
	if err != nil || len(counts) != 0 {
		t.Fatalf("ImportAll = %v, %v", counts, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statements expected: %v", err)
	}
}

func TestLocateMissing(t *testing.T) {
	im := NewImporter(nil, intdb.MySQL, t.TempDir(), nil)
	if _, err := im.ImportTable(context.Background(), repositories.FlightTable); !errors.Is(err, ErrNoDataset) {
		t.Fatalf("expected ErrNoDataset, got %v", err)
	}
}

func TestTableForPath(t *testing.T) {
	im := NewImporter(nil, intdb.MySQL, "data", nil)
	if tbl, ok := im.TableForPath("/x/data/synthetic_flight_data.CSV"); !ok || tbl.Name != "flight" {
		t.Fatalf("flight dataset not recognized: %v %v", tbl.Name, ok)
	}
	if _, ok := im.TableForPath("/x/data/synthetic_flight_data.json"); ok {
		t.Fatalf("json files are not datasets")
	}
	if _, ok := im.TableForPath("/x/data/notes.csv"); ok {
		t.Fatalf("unknown csv should be ignored")
	}
}

func TestWatcherReimportsChangedFile(t *testing.T) {
	dir := t.TempDir()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	expectImport(mock, "recommendations", []driver.Value{"Pune", "flight_booking", "Visit Shaniwar Wada"})

	w := NewWatcher(NewImporter(db, intdb.MySQL, dir, nil), nil)
	w.debounce = 50 * time.Millisecond
	done := make(chan error, 4)
	w.onImport = func(_ string, _ int, err error) { done <- err }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	content := "locations,intent,recommendation\nPune,flight_booking,Visit Shaniwar Wada\n"
	if err := os.WriteFile(filepath.Join(dir, "large_user_recommendations.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("re-import failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not re-import")
	}
}

func TestWatcherStaleScheduleLeavesNewerOne(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	w := NewWatcher(NewImporter(db, intdb.MySQL, t.TempDir(), nil), nil)
	imported := 0
	w.onImport = func(string, int, error) { imported++ }

	table := repositories.Table{Name: "flight"}
	stale, latest := &pending{}, &pending{}
	w.timers[table.Name] = latest

	w.fire(context.Background(), table, stale)
	if imported != 0 {
		t.Fatalf("stale schedule imported %d times", imported)
	}
	if w.timers[table.Name] != latest {
		t.Fatalf("stale schedule removed the newer one")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database calls: %v", err)
	}
}
