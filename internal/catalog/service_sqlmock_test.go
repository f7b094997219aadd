package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestListDisplaysSQLMockErrors(t *testing.T) {
	cases := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   string
	}{
		{
			name: "query view error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT enabled FROM views").WillReturnError(errors.New("view fail"))
			},
			wantErr: "query view",
		},
		{
			name: "query displays error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT enabled FROM views").WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(1))
				mock.ExpectQuery("SELECT display_id FROM view_displays").WillReturnError(errors.New("displays fail"))
			},
			wantErr: "query displays",
		},
		{
			name: "iterate displays error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT enabled FROM views").WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(1))
				mock.ExpectQuery("SELECT display_id FROM view_displays").WillReturnRows(
					sqlmock.NewRows([]string{"display_id"}).AddRow("default").RowError(0, errors.New("row fail")))
			},
			wantErr: "iterate displays",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer mockDB.Close()

			tc.setupMock(mock)

			_, _, err = NewService(mockDB).ListDisplays(context.Background(), "content")
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestAddViewSQLMockErrors(t *testing.T) {
	cases := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   string
	}{
		{
			name: "begin error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("begin fail"))
			},
			wantErr: "begin view tx",
		},
		{
			name: "insert default display error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO views").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("INSERT INTO view_displays").WillReturnError(errors.New("display fail"))
				mock.ExpectRollback()
			},
			wantErr: "insert default display",
		},
		{
			name: "commit error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO views").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("INSERT INTO view_displays").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(errors.New("commit fail"))
			},
			wantErr: "commit view tx",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer mockDB.Close()

			tc.setupMock(mock)

			_, err = NewService(mockDB).AddView(context.Background(), ViewInput{Name: "v", Base: BaseContent})
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestRemoveViewRowsAffectedError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectExec("DELETE FROM views").WillReturnResult(sqlmock.NewErrorResult(errors.New("affected fail")))
	if err := NewService(mockDB).RemoveView(context.Background(), "content"); err == nil || !strings.Contains(err.Error(), "rows affected") {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}
